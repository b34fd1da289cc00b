package playback

import (
	"sync"

	"github.com/xaionaro-go/avcompare/pkg/transport"
)

type fakeHandle struct {
	locker   sync.Mutex
	position float64
	duration float64
	playing  bool
	ended    bool
	unready  bool
	seeks    []float64
}

var _ transport.Handle = (*fakeHandle)(nil)

func newFakeHandle(position float64) *fakeHandle {
	return &fakeHandle{position: position, duration: 100}
}

func (h *fakeHandle) Position() float64 {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.position
}

func (h *fakeHandle) Seek(position float64) error {
	h.locker.Lock()
	defer h.locker.Unlock()
	if h.unready {
		return transport.ErrTransportUnready
	}
	h.position = position
	h.seeks = append(h.seeks, position)
	return nil
}

func (h *fakeHandle) Play() error {
	h.locker.Lock()
	defer h.locker.Unlock()
	if h.unready {
		return transport.ErrTransportUnready
	}
	h.playing = true
	h.ended = false
	return nil
}

func (h *fakeHandle) Pause() error {
	h.locker.Lock()
	defer h.locker.Unlock()
	if h.unready {
		return transport.ErrTransportUnready
	}
	h.playing = false
	return nil
}

func (h *fakeHandle) IsPlaying() bool {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.playing
}

func (h *fakeHandle) IsEnded() bool {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.ended
}

func (h *fakeHandle) Duration() float64 {
	return h.duration
}

func (h *fakeHandle) SetPosition(position float64) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.position = position
}

func (h *fakeHandle) Seeks() []float64 {
	h.locker.Lock()
	defer h.locker.Unlock()
	return append([]float64(nil), h.seeks...)
}
