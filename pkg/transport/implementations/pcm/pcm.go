// Package pcm implements an audible transport playing a decoded PCM buffer
// through an audio.Player.
package pcm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/audio/planar"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

const outputFormat = audio.PCMFormatFloat32LE

// Transport feeds the player from a cursor over the PCM. The position is
// the amount of frames handed to the player so far, so it is ahead of what
// is audible by at most the player's buffer.
type Transport struct {
	locker  sync.Mutex
	pcm     *audio.PCM
	stream  audio.PlayStream
	frame   int
	playing bool
	muted   bool
	closed  bool
	scratch []byte
}

var (
	_ transport.Handle = (*Transport)(nil)
	_ io.Closer        = (*Transport)(nil)
)

// New starts a (paused) playback stream of pcm on player.
func New(
	ctx context.Context,
	player *audio.Player,
	pcm *audio.PCM,
) (*Transport, error) {
	if pcm.Len() == 0 || pcm.SampleRate == 0 {
		return nil, fmt.Errorf("%w: no audio to play", transport.ErrTransportUnready)
	}
	if player == nil || player.PlayerPCM == nil {
		return nil, fmt.Errorf("%w: no player", transport.ErrTransportUnready)
	}

	t := &Transport{
		pcm: pcm,
	}
	stream, err := player.PlayPCM(
		ctx,
		pcm.SampleRate,
		pcm.Channels(),
		outputFormat,
		audio.BufferSize,
		(*cursorReader)(t),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to start a PCM stream: %w", err)
	}
	t.stream = stream
	logger.Debugf(ctx, "started a PCM stream: %d channels at %d Hz, %.3fs", pcm.Channels(), pcm.SampleRate, pcm.Duration())
	return t, nil
}

func (t *Transport) readyLocked() error {
	if t.closed || t.stream == nil {
		return transport.ErrTransportUnready
	}
	return nil
}

func (t *Transport) Position() float64 {
	t.locker.Lock()
	defer t.locker.Unlock()
	return float64(t.frame) / float64(t.pcm.SampleRate)
}

func (t *Transport) Seek(position float64) error {
	t.locker.Lock()
	defer t.locker.Unlock()
	if err := t.readyLocked(); err != nil {
		return err
	}
	position = transport.ClampPosition(position, t.pcm.Duration())
	t.frame = int(position * float64(t.pcm.SampleRate))
	if t.frame > t.pcm.Len() {
		t.frame = t.pcm.Len()
	}
	return nil
}

// Play resumes the playback; an ended transport restarts from 0.
func (t *Transport) Play() error {
	t.locker.Lock()
	defer t.locker.Unlock()
	if err := t.readyLocked(); err != nil {
		return err
	}
	if t.frame >= t.pcm.Len() {
		t.frame = 0
	}
	t.playing = true
	return nil
}

func (t *Transport) Pause() error {
	t.locker.Lock()
	defer t.locker.Unlock()
	if err := t.readyLocked(); err != nil {
		return err
	}
	t.playing = false
	return nil
}

func (t *Transport) IsPlaying() bool {
	t.locker.Lock()
	defer t.locker.Unlock()
	return t.playing
}

func (t *Transport) IsEnded() bool {
	t.locker.Lock()
	defer t.locker.Unlock()
	return !t.playing && t.frame >= t.pcm.Len()
}

func (t *Transport) Duration() float64 {
	return t.pcm.Duration()
}

// SetMuted keeps the transport advancing while emitting silence.
func (t *Transport) SetMuted(muted bool) {
	t.locker.Lock()
	defer t.locker.Unlock()
	t.muted = muted
}

func (t *Transport) IsMuted() bool {
	t.locker.Lock()
	defer t.locker.Unlock()
	return t.muted
}

func (t *Transport) Close() error {
	t.locker.Lock()
	if t.closed {
		t.locker.Unlock()
		return nil
	}
	t.closed = true
	t.playing = false
	stream := t.stream
	t.locker.Unlock()

	if stream == nil {
		return nil
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("unable to close the PCM stream: %w", err)
	}
	return nil
}

// cursorReader is the io.Reader the player pulls interleaved samples from.
type cursorReader Transport

func (r *cursorReader) Read(p []byte) (int, error) {
	t := (*Transport)(r)
	t.locker.Lock()
	defer t.locker.Unlock()

	if t.closed {
		return 0, io.EOF
	}

	frameSize := int(t.pcm.Channels()) * int(outputFormat.Size())
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	size := frames * frameSize

	if !t.playing {
		clear(p[:size])
		return size, nil
	}

	end := t.frame + frames
	if end >= t.pcm.Len() {
		end = t.pcm.Len()
		t.playing = false
	}

	n := 0
	if t.muted {
		n = (end - t.frame) * frameSize
		clear(p[:n])
	} else {
		if len(t.scratch) < size {
			t.scratch = make([]byte, size)
		}
		var err error
		n, err = planar.Interleave(t.pcm, t.frame, end, outputFormat, t.scratch, p)
		if err != nil {
			return 0, fmt.Errorf("unable to interleave frames [%d, %d): %w", t.frame, end, err)
		}
	}
	t.frame = end

	clear(p[n:size])
	return size, nil
}
