package planar

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/audio"
)

func clean(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestUnplanarize(t *testing.T) {
	b := must(hex.DecodeString(clean("00010203 04050607 08090A0B 0C0D0E0F 10111213 14151617 18191A1B 1C1D1E1F")))
	r := make([]byte, len(b))
	err := Unplanarize(2, 4, r, b)
	require.NoError(t, err)
	require.Equal(t, must(hex.DecodeString(clean("00010203 10111213 04050607 14151617 08090A0B 18191A1B 0C0D0E0F 1C1D1E1F"))), r, spew.Sdump(b))
}

func TestPlanarizeIsInverse(t *testing.T) {
	b := must(hex.DecodeString(clean("00010203 04050607 08090A0B 0C0D0E0F 10111213 14151617")))
	interleaved := make([]byte, len(b))
	require.NoError(t, Unplanarize(3, 2, interleaved, b))

	planarAgain := make([]byte, len(b))
	require.NoError(t, Planarize(3, 2, planarAgain, interleaved))
	require.Equal(t, b, planarAgain, spew.Sdump(interleaved))
}

func TestLayoutErrors(t *testing.T) {
	require.Error(t, Unplanarize(2, 2, make([]byte, 6), make([]byte, 6)))
	require.Error(t, Planarize(2, 2, make([]byte, 4), make([]byte, 8)))
	require.Error(t, Planarize(0, 2, nil, nil))
}

func TestInterleaveDeinterleave(t *testing.T) {
	pcm := audio.NewPCM(8000,
		[]float32{0, 0.5, -0.5, 1},
		[]float32{0.25, -0.25, 0.75, -1},
	)

	out := make([]byte, 4*2*4)
	scratch := make([]byte, len(out))
	n, err := Interleave(pcm, 0, 4, audio.PCMFormatFloat32LE, scratch, out)
	require.NoError(t, err)
	require.Equal(t, len(out), n)

	channels, err := Deinterleave(2, audio.PCMFormatFloat32LE, out)
	require.NoError(t, err)
	require.Equal(t, pcm.Samples, channels)
}

func TestInterleavePartialRange(t *testing.T) {
	pcm := audio.NewPCM(8000, []float32{0.1, 0.2, 0.3, 0.4})

	out := make([]byte, 64)
	scratch := make([]byte, 64)
	n, err := Interleave(pcm, 1, 3, audio.PCMFormatFloat32LE, scratch, out)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	channels, err := Deinterleave(1, audio.PCMFormatFloat32LE, out[:n])
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.2, 0.3}}, channels)
}

func TestDeinterleaveDropsTrailingPartialFrame(t *testing.T) {
	channels, err := Deinterleave(2, audio.PCMFormatS16LE, []byte{0, 0x40, 0, 0xC0, 0xFF})
	require.NoError(t, err)
	require.Len(t, channels, 2)
	require.Equal(t, []float32{0.5}, channels[0])
	require.Equal(t, []float32{-0.5}, channels[1])
}
