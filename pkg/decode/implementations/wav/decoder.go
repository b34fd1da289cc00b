package wav

import (
	"context"

	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/decode"
	"github.com/xaionaro-go/avcompare/pkg/wav"
)

func init() {
	decode.RegisterDecoder(decode.FormatWAV, Decoder{})
}

type Decoder struct{}

var _ decode.Decoder = Decoder{}

func (Decoder) Decode(ctx context.Context, data []byte) (*audio.PCM, error) {
	pcm, err := wav.Decode(data)
	if err != nil {
		return nil, decode.Failuref(err, "unable to parse WAVE")
	}
	return pcm, nil
}
