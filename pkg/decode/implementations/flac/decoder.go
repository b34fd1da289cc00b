package flac

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/decode"
)

const maxPreallocatedFrames = 1 << 26

func init() {
	decode.RegisterDecoder(decode.FormatFLAC, Decoder{})
}

type Decoder struct{}

var _ decode.Decoder = Decoder{}

func (Decoder) Decode(ctx context.Context, data []byte) (*audio.PCM, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, decode.Failuref(err, "unable to open a FLAC stream")
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 || info.BitsPerSample == 0 {
		return nil, decode.Failuref(fmt.Errorf("%d channels, %d bits per sample", info.NChannels, info.BitsPerSample), "invalid FLAC stream info")
	}
	scale := float32(int64(1) << (info.BitsPerSample - 1))

	samples := make([][]float32, info.NChannels)
	if info.NSamples > 0 && info.NSamples < maxPreallocatedFrames {
		for ch := range samples {
			samples[ch] = make([]float32, 0, info.NSamples)
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decode.Failuref(err, "unable to parse a FLAC frame")
		}
		if len(frame.Subframes) != len(samples) {
			return nil, decode.Failuref(fmt.Errorf("%d != %d", len(frame.Subframes), len(samples)), "unexpected amount of FLAC subframes")
		}
		for ch, subframe := range frame.Subframes {
			for _, v := range subframe.Samples[:frame.BlockSize] {
				samples[ch] = append(samples[ch], float32(v)/scale)
			}
		}
	}
	return audio.NewPCM(audio.SampleRate(info.SampleRate), samples...), nil
}
