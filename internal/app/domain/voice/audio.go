package voice

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/voyago/voyago/internal/app/models"
)

const (
	// FrameSize is the PCM byte count per streaming frame.
	FrameSize = 1280

	requiredSampleRate = 16000
)

// ConvertToPCM decodes a WAV container into 16 kHz mono little-endian PCM16
// bytes, the only format the recognizer accepts. Multi-channel input keeps
// channel 0; samples are clamped to [-1, 1] before scaling.
func ConvertToPCM(wav []byte) ([]byte, error) {
	samples, err := decodeWAV(wav)
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w: %v", models.ErrBadRequest, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("audio conversion failed: %w: no samples", models.ErrBadRequest)
	}

	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, s))
		var n int16
		if v < 0 {
			n = int16(v * 0x8000)
		} else {
			n = int16(v * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(n))
	}
	return out, nil
}

// Frames splits PCM bytes into FrameSize chunks. The last chunk may be short.
func Frames(pcm []byte) [][]byte {
	var frames [][]byte
	for off := 0; off < len(pcm); off += FrameSize {
		end := off + FrameSize
		if end > len(pcm) {
			end = len(pcm)
		}
		frames = append(frames, pcm[off:end])
	}
	return frames
}

// decodeWAV walks the RIFF chunk list and returns channel-0 float samples.
// PCM16 and IEEE float32 encodings are supported, 16 kHz only.
func decodeWAV(data []byte) ([]float64, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	var (
		audioFormat   uint16
		numChannels   uint16
		sampleRate    uint32
		bitsPerSample uint16
		raw           []byte
		haveFmt       bool
	)

	r := bytes.NewReader(data[12:])
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			break
		}
		chunkID := string(hdr[0:4])
		chunkSize := binary.LittleEndian.Uint32(hdr[4:8])
		body := make([]byte, chunkSize)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("truncated %q chunk", chunkID)
		}
		// Chunks are word-aligned.
		if chunkSize%2 == 1 {
			var pad [1]byte
			io.ReadFull(r, pad[:]) //nolint:errcheck
		}

		switch chunkID {
		case "fmt ":
			if len(body) < 16 {
				return nil, fmt.Errorf("short fmt chunk")
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			numChannels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			raw = body
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if raw == nil {
		return nil, fmt.Errorf("missing data chunk")
	}
	if sampleRate != requiredSampleRate {
		return nil, fmt.Errorf("sample rate %d, want %d", sampleRate, requiredSampleRate)
	}
	if numChannels == 0 {
		return nil, fmt.Errorf("zero channels")
	}

	switch {
	case audioFormat == 1 && bitsPerSample == 16:
		return decodePCM16(raw, int(numChannels)), nil
	case audioFormat == 3 && bitsPerSample == 32:
		return decodeFloat32(raw, int(numChannels)), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: format %d, %d bits", audioFormat, bitsPerSample)
	}
}

func decodePCM16(raw []byte, channels int) []float64 {
	stride := 2 * channels
	samples := make([]float64, 0, len(raw)/stride)
	for off := 0; off+2 <= len(raw); off += stride {
		n := int16(binary.LittleEndian.Uint16(raw[off:]))
		samples = append(samples, float64(n)/0x8000)
	}
	return samples
}

func decodeFloat32(raw []byte, channels int) []float64 {
	stride := 4 * channels
	samples := make([]float64, 0, len(raw)/stride)
	for off := 0; off+4 <= len(raw); off += stride {
		bits := binary.LittleEndian.Uint32(raw[off:])
		samples = append(samples, float64(math.Float32frombits(bits)))
	}
	return samples
}
