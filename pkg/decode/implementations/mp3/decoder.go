package mp3

import (
	"bytes"
	"context"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/audio/planar"
	"github.com/xaionaro-go/avcompare/pkg/decode"
)

// go-mp3 always produces interleaved 16-bit stereo.
const (
	channels = audio.Channel(2)
	format   = audio.PCMFormatS16LE
)

func init() {
	decode.RegisterDecoder(decode.FormatMP3, Decoder{})
}

type Decoder struct{}

var _ decode.Decoder = Decoder{}

func (Decoder) Decode(ctx context.Context, data []byte) (*audio.PCM, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, decode.Failuref(err, "unable to initialize an MP3 decoder")
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, decode.Failuref(err, "unable to decode MP3")
	}

	samples, err := planar.Deinterleave(channels, format, raw)
	if err != nil {
		return nil, decode.Failuref(err, "unable to deinterleave MP3 samples")
	}
	return audio.NewPCM(audio.SampleRate(d.SampleRate()), samples...), nil
}
