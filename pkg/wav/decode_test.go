package wav

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWAV(formatTag, channels uint16, sampleRate uint32, bits uint16, extra []byte, data []byte) []byte {
	blockAlign := channels * bits / 8
	w := NewByteWriter(12 + 8 + 16 + 8 + len(extra) + 8 + len(data))
	w.WriteFourCC("RIFF")
	w.WriteU32(uint32(len(w.Bytes()) - 8))
	w.WriteFourCC("WAVE")
	w.WriteFourCC("fmt ")
	w.WriteU32(16)
	w.WriteU16(formatTag)
	w.WriteU16(channels)
	w.WriteU32(sampleRate)
	w.WriteU32(sampleRate * uint32(blockAlign))
	w.WriteU16(blockAlign)
	w.WriteU16(bits)
	w.WriteFourCC("LIST")
	w.WriteU32(uint32(len(extra)))
	copy(w.Bytes()[w.Offset():], extra)
	w.offset += len(extra)
	w.WriteFourCC("data")
	w.WriteU32(uint32(len(data)))
	copy(w.Bytes()[w.Offset():], data)
	return w.Bytes()
}

func TestDecodeFloat32SkippingUnknownChunks(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-0.75))

	pcm, err := Decode(buildWAV(formatTagIEEEFloat, 1, 16000, 32, []byte("info"), data))
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.25, -0.75}}, pcm.Samples)
	assert.EqualValues(t, 16000, pcm.SampleRate)
}

func TestDecodeU8Stereo(t *testing.T) {
	pcm, err := Decode(buildWAV(formatTagPCM, 2, 8000, 8, nil, []byte{128, 0, 192, 64}))
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0.5}, {-1, -0.5}}, pcm.Samples)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("definitely not a wave file"))
	assert.Error(t, err)

	_, err = Decode(buildWAV(formatTagPCM, 1, 8000, 12, nil, []byte{0, 0}))
	assert.Error(t, err)

	blob := Encode(nil)
	_, err = Decode(blob[:36])
	assert.Error(t, err)
}
