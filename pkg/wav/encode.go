// Package wav encodes PCM buffers into canonical 16-bit RIFF/WAVE files and
// reads the common WAVE variants back.
package wav

import (
	"fmt"
	"io"
	"math"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

const (
	HeaderSize = 44

	formatTagPCM        = 1
	formatTagIEEEFloat  = 3
	formatTagExtensible = 0xFFFE

	bitsPerSample = 16
)

// Encode serializes pcm as a 16-bit little-endian PCM WAVE file with
// interleaved channels. Channels shorter than the first one are padded
// with silence.
func Encode(pcm *audio.PCM) []byte {
	channels := int(pcm.Channels())
	frames := pcm.Len()
	if channels == 0 {
		frames = 0
	}
	dataSize := frames * channels * bitsPerSample / 8

	w := NewByteWriter(HeaderSize + dataSize)
	writeHeader(w, pcm, dataSize)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			w.WriteS16(sampleToS16(pcm.Sample(audio.Channel(ch), frame)))
		}
	}
	return w.Bytes()
}

// Write writes the output of Encode into w.
func Write(w io.Writer, pcm *audio.PCM) (int, error) {
	n, err := w.Write(Encode(pcm))
	if err != nil {
		return n, fmt.Errorf("unable to write the WAV data: %w", err)
	}
	return n, nil
}

func writeHeader(w *ByteWriter, pcm *audio.PCM, dataSize int) {
	channels := uint16(pcm.Channels())
	var sampleRate uint32
	if pcm != nil {
		sampleRate = uint32(pcm.SampleRate)
	}
	blockAlign := channels * bitsPerSample / 8

	w.WriteFourCC("RIFF")
	w.WriteU32(uint32(HeaderSize - 8 + dataSize))
	w.WriteFourCC("WAVE")
	w.WriteFourCC("fmt ")
	w.WriteU32(16)
	w.WriteU16(formatTagPCM)
	w.WriteU16(channels)
	w.WriteU32(sampleRate)
	w.WriteU32(sampleRate * uint32(blockAlign))
	w.WriteU16(blockAlign)
	w.WriteU16(bitsPerSample)
	w.WriteFourCC("data")
	w.WriteU32(uint32(dataSize))
}

// sampleToS16 scales negative values by 32768 and the rest by 32767, so
// that both -1 and 1 map onto the int16 range ends. The result is
// truncated toward zero.
func sampleToS16(v float32) int16 {
	s := float64(v)
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}
