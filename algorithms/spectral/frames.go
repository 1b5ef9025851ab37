package spectral

import (
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-ritmo/algorithms/windowing"
	"github.com/RyanBlaney/sonido-ritmo/logging"
)

// Analysis frame geometry. 2048/512 gives ~11.6 ms hop resolution at
// 44.1 kHz, enough frequency resolution for guitar-range fundamentals at
// sample rates of 22.05 kHz and up. Not user-configurable.
const (
	DefaultWindowSize = 2048
	DefaultHopSize    = 512
)

// FrameFeatures holds the three spectral feature scalars for one analysis
// frame. Flux and PhaseDeviation reference the previous frame and are zero
// for the first frame of a sequence.
type FrameFeatures struct {
	Index          int     `json:"index"`
	Time           float64 `json:"time"`            // frame start in seconds (index * hop / rate)
	Energy         float64 `json:"energy"`          // RMS of the magnitude spectrum
	Flux           float64 `json:"flux"`            // sum of positive magnitude increases
	PhaseDeviation float64 `json:"phase_deviation"` // mean |wrapped phase difference|
}

// FrameAnalyzer windows a mono signal into overlapping frames and computes
// per-frame energy, spectral flux, and phase deviation via a real FFT.
// Only the bins up to Nyquist are retained.
type FrameAnalyzer struct {
	windowSize int
	hopSize    int
	window     *windowing.Hann
	fft        *FFT
	logger     logging.Logger
}

// NewFrameAnalyzer creates a frame analyzer with the default window and hop
func NewFrameAnalyzer() *FrameAnalyzer {
	return NewFrameAnalyzerWithSize(DefaultWindowSize, DefaultHopSize)
}

// NewFrameAnalyzerWithSize creates a frame analyzer with explicit frame geometry
func NewFrameAnalyzerWithSize(windowSize, hopSize int) *FrameAnalyzer {
	return &FrameAnalyzer{
		windowSize: windowSize,
		hopSize:    hopSize,
		window:     windowing.NewHann(windowSize, true),
		fft:        NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component":   "frame_analyzer",
			"window_size": windowSize,
			"hop_size":    hopSize,
		}),
	}
}

// WindowSize returns the analysis window length in samples
func (fa *FrameAnalyzer) WindowSize() int { return fa.windowSize }

// HopSize returns the hop length in samples
func (fa *FrameAnalyzer) HopSize() int { return fa.hopSize }

// NumFrames returns how many complete frames fit into a signal of the given
// length. Signals shorter than one window yield zero frames.
func (fa *FrameAnalyzer) NumFrames(signalLen int) int {
	if signalLen < fa.windowSize {
		return 0
	}
	return (signalLen-fa.windowSize)/fa.hopSize + 1
}

// FrameTime converts a frame index to its timestamp in seconds
func (fa *FrameAnalyzer) FrameTime(index, sampleRate int) float64 {
	return float64(index) * float64(fa.hopSize) / float64(sampleRate)
}

// Frames returns a lazy, finite, non-restartable sequence of per-frame
// features. The previous frame's magnitude and phase spectra live inside
// the sequence, so feature computation is a single sequential pass and the
// input signal is never mutated.
func (fa *FrameAnalyzer) Frames(signal []float64, sampleRate int) *FrameSeq {
	return &FrameSeq{
		analyzer:   fa,
		signal:     signal,
		sampleRate: sampleRate,
		numFrames:  fa.NumFrames(len(signal)),
		buffer:     make([]float64, fa.windowSize),
	}
}

// FrameSeq is a stateful iterator over frame features. It is not safe for
// concurrent use and cannot be restarted.
type FrameSeq struct {
	analyzer   *FrameAnalyzer
	signal     []float64
	sampleRate int
	index      int
	numFrames  int
	prevMag    []float64
	prevPhase  []float64
	buffer     []float64
}

// Next returns the features for the next frame. The second return value is
// false once the sequence is exhausted.
func (s *FrameSeq) Next() (FrameFeatures, bool) {
	if s.index >= s.numFrames {
		return FrameFeatures{}, false
	}

	start := s.index * s.analyzer.hopSize
	copy(s.buffer, s.signal[start:start+s.analyzer.windowSize])

	mag, phase := s.analyzer.frameSpectrum(s.buffer)
	features := reduceFrame(s.index, mag, phase, s.prevMag, s.prevPhase)
	features.Time = s.analyzer.FrameTime(s.index, s.sampleRate)

	s.prevMag = mag
	s.prevPhase = phase
	s.index++

	return features, true
}

// ComputeAll computes features for every frame of the signal. Stage 1 runs
// the per-frame FFTs on a worker pool (frames are independent there); stage
// 2 is the sequential flux/phase-deviation reduction, which needs the
// previous frame's spectra. Empty or too-short signals yield an empty slice.
func (fa *FrameAnalyzer) ComputeAll(signal []float64, sampleRate int) []FrameFeatures {
	numFrames := fa.NumFrames(len(signal))
	if numFrames == 0 {
		return []FrameFeatures{}
	}

	fa.logger.Debug("Computing frame features", logging.Fields{
		"signal_length": len(signal),
		"sample_rate":   sampleRate,
		"num_frames":    numFrames,
	})

	magnitude := make([][]float64, numFrames)
	phase := make([][]float64, numFrames)

	// Stage 1: parallel FFT per independent frame
	numWorkers := min(runtime.NumCPU(), numFrames)
	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, fa.windowSize)

			for frameIdx := range jobs {
				start := frameIdx * fa.hopSize
				copy(frameBuffer, signal[start:start+fa.windowSize])
				magnitude[frameIdx], phase[frameIdx] = fa.frameSpectrum(frameBuffer)
			}
		}()
	}

	for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
		jobs <- frameIdx
	}
	close(jobs)
	wg.Wait()

	// Stage 2: sequential reduction over consecutive frames
	features := make([]FrameFeatures, numFrames)
	for i := 0; i < numFrames; i++ {
		var prevMag, prevPhase []float64
		if i > 0 {
			prevMag = magnitude[i-1]
			prevPhase = phase[i-1]
		}
		features[i] = reduceFrame(i, magnitude[i], phase[i], prevMag, prevPhase)
		features[i].Time = fa.FrameTime(i, sampleRate)
	}

	return features
}

// frameSpectrum windows one frame in place and returns its magnitude and
// phase spectra up to Nyquist
func (fa *FrameAnalyzer) frameSpectrum(frame []float64) ([]float64, []float64) {
	// frame is a scratch copy owned by the caller, safe to taper in place
	_ = fa.window.ApplyInPlace(frame)

	fftResult := fa.fft.Compute(frame)

	freqBins := fa.windowSize/2 + 1
	mag := make([]float64, freqBins)
	ph := make([]float64, freqBins)
	for i := 0; i < freqBins; i++ {
		mag[i] = cmplx.Abs(fftResult[i])
		ph[i] = cmplx.Phase(fftResult[i])
	}

	return mag, ph
}

// reduceFrame computes the feature scalars for one frame given the previous
// frame's spectra (nil for the first frame)
func reduceFrame(index int, mag, phase, prevMag, prevPhase []float64) FrameFeatures {
	features := FrameFeatures{Index: index}

	// Energy: RMS of the magnitude spectrum
	sumSquares := 0.0
	for _, m := range mag {
		sumSquares += m * m
	}
	features.Energy = math.Sqrt(sumSquares / float64(len(mag)))

	if prevMag == nil || prevPhase == nil {
		return features
	}

	// Flux: positive magnitude increases only
	flux := 0.0
	for k := range mag {
		if diff := mag[k] - prevMag[k]; diff > 0 {
			flux += diff
		}
	}
	features.Flux = flux

	// Phase deviation: mean absolute wrapped phase difference
	deviation := 0.0
	for k := range phase {
		deviation += math.Abs(wrapPhase(phase[k] - prevPhase[k]))
	}
	features.PhaseDeviation = deviation / float64(len(phase))

	return features
}

// wrapPhase maps a phase difference into (-pi, pi]
func wrapPhase(p float64) float64 {
	for p <= -math.Pi {
		p += 2 * math.Pi
	}
	for p > math.Pi {
		p -= 2 * math.Pi
	}
	return p
}
