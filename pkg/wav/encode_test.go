package wav

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/audio"
)

func TestEncodeSingleSample(t *testing.T) {
	blob := Encode(audio.NewPCM(8000, []float32{1.0}))
	require.Len(t, blob, HeaderSize+2)
	assert.Equal(t, []byte{0xFF, 0x7F}, blob[44:], spew.Sdump(blob))
}

func TestEncodeHeader(t *testing.T) {
	pcm := audio.NewPCM(44100,
		[]float32{0, 0.5, -0.5},
		[]float32{1, -1, 0},
	)
	blob := Encode(pcm)
	require.Len(t, blob, HeaderSize+3*2*2)

	u16 := func(offset int) uint16 { return binary.LittleEndian.Uint16(blob[offset:]) }
	u32 := func(offset int) uint32 { return binary.LittleEndian.Uint32(blob[offset:]) }

	assert.Equal(t, "RIFF", string(blob[0:4]))
	assert.Equal(t, uint32(len(blob)-8), u32(4))
	assert.Equal(t, "WAVE", string(blob[8:12]))
	assert.Equal(t, "fmt ", string(blob[12:16]))
	assert.Equal(t, uint32(16), u32(16))
	assert.Equal(t, uint16(1), u16(20))
	assert.Equal(t, uint16(2), u16(22))
	assert.Equal(t, uint32(44100), u32(24))
	assert.Equal(t, uint32(44100*2*2), u32(28))
	assert.Equal(t, uint16(4), u16(32))
	assert.Equal(t, uint16(16), u16(34))
	assert.Equal(t, "data", string(blob[36:40]))
	assert.Equal(t, uint32(12), u32(40))

	var samples []int16
	for offset := 44; offset < len(blob); offset += 2 {
		samples = append(samples, int16(u16(offset)))
	}
	assert.Equal(t, []int16{0, 32767, 16383, -32768, -16384, 0}, samples)
}

func TestEncodeZeroChannels(t *testing.T) {
	blob := Encode(audio.NewPCM(48000))
	require.Len(t, blob, HeaderSize)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(blob[40:]))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(blob[4:]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(blob[22:]))
}

func TestEncodeClampsAndTruncates(t *testing.T) {
	blob := Encode(audio.NewPCM(8000, []float32{
		2, -3, float32(math.NaN()), 0.99999, -0.99999, 0.00001,
	}))
	var samples []int16
	for offset := 44; offset < len(blob); offset += 2 {
		samples = append(samples, int16(binary.LittleEndian.Uint16(blob[offset:])))
	}
	assert.Equal(t, []int16{32767, -32768, 0, 32766, -32767, 0}, samples)
}

func TestRoundTrip(t *testing.T) {
	left := make([]float32, 1000)
	right := make([]float32, 1000)
	for i := range left {
		left[i] = float32(math.Sin(float64(i) * 0.05))
		right[i] = float32(math.Cos(float64(i) * 0.03))
	}
	pcm := audio.NewPCM(22050, left, right)

	decoded, err := Decode(Encode(pcm))
	require.NoError(t, err)
	require.Equal(t, pcm.SampleRate, decoded.SampleRate)
	require.Equal(t, pcm.Channels(), decoded.Channels())
	require.Equal(t, pcm.Len(), decoded.Len())
	for ch := range pcm.Samples {
		for i := range pcm.Samples[ch] {
			require.InDelta(t, pcm.Samples[ch][i], decoded.Samples[ch][i], 3.0/32768)
		}
	}
}

func TestWrite(t *testing.T) {
	pcm := audio.NewPCM(8000, []float32{0.1, 0.2})
	var buf bytes.Buffer
	n, err := Write(&buf, pcm)
	require.NoError(t, err)
	assert.Equal(t, HeaderSize+4, n)
	assert.Equal(t, Encode(pcm), buf.Bytes())
}

func TestByteWriter(t *testing.T) {
	w := NewByteWriter(12)
	w.WriteFourCC("abcd")
	w.WriteU16(0x0102)
	w.WriteS16(-2)
	w.WriteU32(0x01020304)
	assert.Equal(t, 12, w.Offset())
	assert.Equal(t, []byte{'a', 'b', 'c', 'd', 2, 1, 0xFE, 0xFF, 4, 3, 2, 1}, w.Bytes())
	assert.Panics(t, func() { w.WriteU16(1) })
	assert.Panics(t, func() { NewByteWriter(4).WriteFourCC("abc") })
}
