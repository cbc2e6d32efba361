package voice

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/voyago/internal/app/models"
)

// buildWAV assembles a minimal RIFF/WAVE file for tests.
func buildWAV(format uint16, channels uint16, rate uint32, bits uint16, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, rate)
	binary.Write(&buf, binary.LittleEndian, rate*uint32(channels)*uint32(bits)/8) // byte rate
	binary.Write(&buf, binary.LittleEndian, channels*bits/8)                      // block align
	binary.Write(&buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func float32Bytes(samples ...float32) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func int16Bytes(samples ...int16) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestConvertToPCM_Float32ScalingAndClamping(t *testing.T) {
	wav := buildWAV(3, 1, 16000, 32, float32Bytes(0, 1, -1, 0.5, -0.5, 2.0, -2.0))

	pcm, err := ConvertToPCM(wav)
	require.NoError(t, err)
	require.Len(t, pcm, 14)

	got := make([]int16, 7)
	for i := range got {
		got[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	assert.Equal(t, int16(0), got[0])
	assert.Equal(t, int16(0x7FFF), got[1])
	assert.Equal(t, int16(math.MinInt16), got[2])
	assert.Equal(t, int16(0x3FFF), got[3])
	assert.Equal(t, int16(-0x4000), got[4])
	// Out-of-range input clamps to full scale.
	assert.Equal(t, int16(0x7FFF), got[5])
	assert.Equal(t, int16(math.MinInt16), got[6])
}

func TestConvertToPCM_PCM16PassesThrough(t *testing.T) {
	wav := buildWAV(1, 1, 16000, 16, int16Bytes(0, 1000, -1000, 32767))

	pcm, err := ConvertToPCM(wav)
	require.NoError(t, err)
	require.Len(t, pcm, 8)

	assert.Equal(t, int16(1000), int16(binary.LittleEndian.Uint16(pcm[2:])))
	assert.Equal(t, int16(-1000), int16(binary.LittleEndian.Uint16(pcm[4:])))
}

func TestConvertToPCM_StereoKeepsChannelZero(t *testing.T) {
	// Interleaved L/R pairs; only the left channel should survive.
	wav := buildWAV(1, 2, 16000, 16, int16Bytes(100, -9999, 200, -9999, 300, -9999))

	pcm, err := ConvertToPCM(wav)
	require.NoError(t, err)
	require.Len(t, pcm, 6)

	for i, want := range []int16{100, 200, 300} {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		assert.Equal(t, want, got)
	}
}

func TestConvertToPCM_Rejections(t *testing.T) {
	tests := []struct {
		name string
		wav  []byte
	}{
		{"garbage", []byte("definitely not audio")},
		{"wrong sample rate", buildWAV(1, 1, 44100, 16, int16Bytes(1, 2, 3))},
		{"unsupported encoding", buildWAV(7, 1, 16000, 8, []byte{1, 2, 3})},
		{"no data chunk", buildWAV(1, 1, 16000, 16, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertToPCM(tt.wav)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestConvertToPCM_TruncatedDataChunk(t *testing.T) {
	// Declared data size exceeds the bytes actually present; a short read must
	// surface as an error, not decode as a zero-padded body.
	wav := buildWAV(1, 1, 16000, 16, int16Bytes(1, 2, 3, 4))
	truncated := wav[:len(wav)-3]

	_, err := ConvertToPCM(truncated)

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.ErrorContains(t, err, "truncated")
}

func TestFrames(t *testing.T) {
	pcm := make([]byte, FrameSize*2+100)

	frames := Frames(pcm)

	require.Len(t, frames, 3)
	assert.Len(t, frames[0], FrameSize)
	assert.Len(t, frames[1], FrameSize)
	assert.Len(t, frames[2], 100)
}

func TestFrames_Empty(t *testing.T) {
	assert.Empty(t, Frames(nil))
}
