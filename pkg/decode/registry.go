package decode

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/avcompare/pkg/audio"
)

var (
	decoderRegistry       = map[Format]Decoder{}
	decoderRegistryLocker sync.Mutex
)

// RegisterDecoder is expected to be called from init() of an implementation
// package; registering a second decoder for the same format panics.
func RegisterDecoder(format Format, decoder Decoder) {
	decoderRegistryLocker.Lock()
	defer decoderRegistryLocker.Unlock()
	if _, ok := decoderRegistry[format]; ok {
		panic(fmt.Errorf("there is already registered a decoder for %v", format))
	}
	decoderRegistry[format] = decoder
}

func DecoderFor(format Format) Decoder {
	decoderRegistryLocker.Lock()
	defer decoderRegistryLocker.Unlock()
	return decoderRegistry[format]
}

// Auto decodes data using the decoder registered for its sniffed format.
type Auto struct{}

var _ Decoder = Auto{}

func (Auto) Decode(ctx context.Context, data []byte) (*audio.PCM, error) {
	format := Sniff(data)
	logger.Debugf(ctx, "sniffed format of %d bytes: %v", len(data), format)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: unrecognized container", ErrDecodeFailure)
	}

	decoder := DecoderFor(format)
	if decoder == nil {
		return nil, fmt.Errorf("%w: no decoder registered for %v", ErrDecodeFailure, format)
	}

	pcm, err := decoder.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	if pcm.SampleRate == 0 || pcm.Len() == 0 {
		return nil, fmt.Errorf("%w: the %v decoder returned no audio", ErrDecodeFailure, format)
	}
	logger.Debugf(ctx, "decoded %v: %d channels, %d frames at %d Hz", format, pcm.Channels(), pcm.Len(), pcm.SampleRate)
	return pcm, nil
}
