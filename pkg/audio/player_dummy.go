package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/observability"
)

// PlayerPCMDummy is the output used when no device is available: it
// discards the samples, but pulls them at the playback pace, so readers
// advance as if the audio were audible.
type PlayerPCMDummy struct{}

var _ PlayerPCM = PlayerPCMDummy{}

func (PlayerPCMDummy) Close() error {
	return nil
}

func (PlayerPCMDummy) Ping(context.Context) error {
	return nil
}

func (PlayerPCMDummy) PlayPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	format PCMFormat,
	bufferSize time.Duration,
	reader io.Reader,
) (PlayStream, error) {
	frameSize := int(channels) * int(format.Size())
	if frameSize == 0 || sampleRate == 0 {
		return nil, fmt.Errorf("invalid stream format: %d channels of %v at %d Hz", channels, format, sampleRate)
	}
	if bufferSize <= 0 {
		bufferSize = BufferSize
	}
	frames := max(int(bufferSize.Seconds()*float64(sampleRate)), 1)

	s := &pacedStream{
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	observability.Go(ctx, func() {
		s.run(ctx, reader, make([]byte, frames*frameSize), bufferSize)
	})
	return s, nil
}

// pacedStream reads one buffer per buffer duration until the reader fails
// or the stream is closed.
type pacedStream struct {
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
	err       error
}

var _ PlayStream = (*pacedStream)(nil)

func (s *pacedStream) run(
	ctx context.Context,
	reader io.Reader,
	buf []byte,
	period time.Duration,
) {
	defer close(s.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
		}
		if _, err := reader.Read(buf); err != nil {
			if err != io.EOF {
				s.err = err
			}
			logger.Tracef(ctx, "the discarded stream ended: %v", err)
			return
		}
	}
}

// Drain waits until the reader is exhausted.
func (s *pacedStream) Drain() error {
	<-s.done
	return s.err
}

func (s *pacedStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	<-s.done
	return nil
}

// StreamDummy is a stream that is already over.
type StreamDummy struct{}

var _ PlayStream = StreamDummy{}

func (StreamDummy) Drain() error {
	return nil
}

func (StreamDummy) Close() error {
	return nil
}
