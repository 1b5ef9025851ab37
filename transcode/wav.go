package transcode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/RyanBlaney/sonido-ritmo/logging"
)

// Minimal 16-bit PCM WAV reader/writer. This exists to exchange audio with
// the out-of-process onset backend and to load test fixtures; it is not a
// general container parser.

const (
	wavFormatPCM     = 1
	wavBitsPerSample = 16
)

// EncodeWAV writes the buffer as a mono 16-bit PCM WAV file
func EncodeWAV(w io.Writer, buf *Buffer) error {
	if buf == nil || buf.SampleRate <= 0 {
		return fmt.Errorf("%w: nil or invalid buffer", ErrDecode)
	}

	numSamples := len(buf.Samples)
	dataSize := uint32(numSamples * 2)

	var header bytes.Buffer
	header.WriteString("RIFF")
	binary.Write(&header, binary.LittleEndian, uint32(36+dataSize))
	header.WriteString("WAVE")

	header.WriteString("fmt ")
	binary.Write(&header, binary.LittleEndian, uint32(16))
	binary.Write(&header, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&header, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&header, binary.LittleEndian, uint32(buf.SampleRate))
	binary.Write(&header, binary.LittleEndian, uint32(buf.SampleRate*2)) // byte rate
	binary.Write(&header, binary.LittleEndian, uint16(2))                // block align
	binary.Write(&header, binary.LittleEndian, uint16(wavBitsPerSample))

	header.WriteString("data")
	binary.Write(&header, binary.LittleEndian, dataSize)

	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}

	pcm := make([]byte, numSamples*2)
	for i, s := range buf.Samples {
		// Clip to [-1, 1] before quantizing
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(math.Round(s * 32767.0))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("failed to write WAV samples: %w", err)
	}

	return nil
}

// WriteWAVFile writes the buffer to a WAV file at the given path
func WriteWAVFile(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	if err := EncodeWAV(f, buf); err != nil {
		return err
	}
	return f.Close()
}

// DecodeWAV reads a 16-bit PCM WAV stream and returns a mono buffer,
// down-mixing multi-channel content. Malformed input yields ErrDecode.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_decoder",
	})

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}

	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrDecode)
	}

	var (
		sampleRate int
		channels   int
		bitsPer    int
		pcm        []byte
		haveFmt    bool
	)

	// Walk the chunk list; chunks are word-aligned
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if body+chunkSize > len(data) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrDecode, chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrDecode)
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != wavFormatPCM {
				return nil, fmt.Errorf("%w: unsupported WAV format %d", ErrDecode, format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPer = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkSize]
		}

		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !haveFmt || pcm == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrDecode)
	}
	if bitsPer != wavBitsPerSample {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitsPer)
	}
	if channels < 1 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid fmt chunk (channels=%d rate=%d)", ErrDecode, channels, sampleRate)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty data chunk", ErrDecode)
	}

	numSamples := len(pcm) / 2
	interleaved := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		interleaved[i] = float64(v) / 32768.0
	}

	logger.Debug("Decoded WAV stream", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"num_samples": numSamples,
	})

	return DownmixMono(interleaved, channels, sampleRate)
}

// ReadWAVFile reads a WAV file from disk into a mono buffer
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	return DecodeWAV(f)
}
