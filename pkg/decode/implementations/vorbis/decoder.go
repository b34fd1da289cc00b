package vorbis

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/decode"
)

const readChunkFrames = 4096

func init() {
	decode.RegisterDecoder(decode.FormatVorbis, Decoder{})
}

type Decoder struct{}

var _ decode.Decoder = Decoder{}

func (Decoder) Decode(ctx context.Context, data []byte) (*audio.PCM, error) {
	oggReader, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, decode.Failuref(err, "unable to initialize a vorbis reader")
	}

	channels := oggReader.Channels()
	samples := make([][]float32, channels)
	buf := make([]float32, readChunkFrames*channels)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := oggReader.Read(buf)
		for idx := 0; idx+channels <= n; idx += channels {
			for ch := range samples {
				samples[ch] = append(samples[ch], buf[idx+ch])
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decode.Failuref(err, "unable to decode vorbis")
		}
	}
	return audio.NewPCM(audio.SampleRate(oggReader.SampleRate()), samples...), nil
}
