package detect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-ritmo/logging"
	"github.com/RyanBlaney/sonido-ritmo/transcode"
)

// AubioDetector delegates onset detection to the aubio onset CLI, invoked
// out of process with a temporary WAV file. Any failure - missing binary,
// bad exit, unparsable output - is reported as ErrBackendUnavailable so the
// chain falls back to the built-in detector.
type AubioDetector struct {
	path    string
	timeout time.Duration
	logger  logging.Logger
}

// NewAubioDetector creates an external backend detector for the given
// aubio binary path
func NewAubioDetector(path string, timeout time.Duration) *AubioDetector {
	if timeout <= 0 {
		timeout = DefaultConfig().AubioTimeout
	}
	return &AubioDetector{
		path:    path,
		timeout: timeout,
		logger: logging.WithFields(logging.Fields{
			"component": "aubio_detector",
			"path":      path,
		}),
	}
}

// Name identifies the detector in logs and results
func (ad *AubioDetector) Name() string { return "aubio" }

// Detect writes the buffer to a temp WAV, runs the aubio CLI against it,
// and parses one onset timestamp per output line
func (ad *AubioDetector) Detect(ctx context.Context, buf *transcode.Buffer, cfg Config) ([]Onset, error) {
	if buf == nil || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: nil or invalid buffer", transcode.ErrDecode)
	}

	if _, err := exec.LookPath(ad.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	tmpFile, err := os.CreateTemp("", "sonido-ritmo-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create exchange file: %v", ErrBackendUnavailable, err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	encodeErr := transcode.EncodeWAV(tmpFile, buf)
	closeErr := tmpFile.Close()
	if encodeErr != nil {
		return nil, fmt.Errorf("%w: failed to write exchange file: %v", ErrBackendUnavailable, encodeErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: failed to write exchange file: %v", ErrBackendUnavailable, closeErr)
	}

	ctx, cancel := context.WithTimeout(ctx, ad.timeout)
	defer cancel()

	ad.logger.Debug("Running external onset backend", logging.Fields{
		"exchange_file": tmpPath,
		"timeout":       ad.timeout,
	})

	cmd := exec.CommandContext(ctx, ad.path, "-i", tmpPath)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: backend exited with error: %v", ErrBackendUnavailable, err)
	}

	onsets, err := parseAubioOutput(string(output))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	ad.logger.Debug("External backend detection complete", logging.Fields{
		"num_onsets": len(onsets),
	})

	return FilterOnsets(onsets, cfg.MinOnsetTime, cfg.MaxDuration), nil
}

// parseAubioOutput parses the one-timestamp-per-line beatmap format the
// aubio CLI emits. Timestamps are sorted ascending before returning.
func parseAubioOutput(output string) ([]Onset, error) {
	var onsets []Onset

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		t, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable backend output line %q", line)
		}
		if t < 0 {
			return nil, fmt.Errorf("negative backend timestamp %v", t)
		}

		onsets = append(onsets, Onset{Time: t})
	}

	sort.Slice(onsets, func(i, j int) bool { return onsets[i].Time < onsets[j].Time })
	return onsets, nil
}
