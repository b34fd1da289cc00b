// Package clock implements a transport driven by a wall clock, as used for
// video surfaces that render whatever frame corresponds to the position.
package clock

import (
	"sync"
	"time"

	"github.com/xaionaro-go/avcompare/pkg/transport"
)

type Option interface {
	apply(*Transport)
}

type optionNow func() time.Time

func (o optionNow) apply(t *Transport) { t.now = o }

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return optionNow(now)
}

type optionRate float64

func (o optionRate) apply(t *Transport) { t.rate = float64(o) }

// WithRate sets the playback rate; 1 is real time.
func WithRate(rate float64) Option {
	return optionRate(rate)
}

type Transport struct {
	locker    sync.Mutex
	now       func() time.Time
	rate      float64
	duration  float64
	position  float64
	startedAt time.Time
	playing   bool
}

var _ transport.Handle = (*Transport)(nil)

// New returns a paused transport at position 0. A non-positive duration
// means the media never ends.
func New(
	duration float64,
	opts ...Option,
) *Transport {
	t := &Transport{
		now:      time.Now,
		rate:     1,
		duration: duration,
	}
	for _, opt := range opts {
		opt.apply(t)
	}
	return t
}

// positionLocked advances the position to the current time and stops the
// transport when it reached the end.
func (t *Transport) positionLocked() float64 {
	if !t.playing {
		return t.position
	}
	now := t.now()
	position := t.position + now.Sub(t.startedAt).Seconds()*t.rate
	if t.duration > 0 && position >= t.duration {
		t.position = t.duration
		t.playing = false
		return t.position
	}
	return position
}

func (t *Transport) Position() float64 {
	t.locker.Lock()
	defer t.locker.Unlock()
	return t.positionLocked()
}

func (t *Transport) Seek(position float64) error {
	t.locker.Lock()
	defer t.locker.Unlock()
	t.position = transport.ClampPosition(position, t.duration)
	t.startedAt = t.now()
	return nil
}

// Play resumes the playback; an ended transport restarts from 0.
func (t *Transport) Play() error {
	t.locker.Lock()
	defer t.locker.Unlock()
	if t.playing {
		return nil
	}
	if t.endedLocked() {
		t.position = 0
	}
	t.playing = true
	t.startedAt = t.now()
	return nil
}

func (t *Transport) Pause() error {
	t.locker.Lock()
	defer t.locker.Unlock()
	t.position = t.positionLocked()
	t.playing = false
	return nil
}

func (t *Transport) IsPlaying() bool {
	t.locker.Lock()
	defer t.locker.Unlock()
	t.positionLocked()
	return t.playing
}

func (t *Transport) IsEnded() bool {
	t.locker.Lock()
	defer t.locker.Unlock()
	t.positionLocked()
	return t.endedLocked()
}

func (t *Transport) endedLocked() bool {
	return !t.playing && t.duration > 0 && t.position >= t.duration
}

func (t *Transport) Duration() float64 {
	return t.duration
}
