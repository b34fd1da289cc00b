package transport

// Dummy is a transport that is never ready; every command fails with
// ErrTransportUnready.
type Dummy struct{}

var _ Handle = Dummy{}

func (Dummy) Position() float64 { return 0 }
func (Dummy) Seek(float64) error { return ErrTransportUnready }
func (Dummy) Play() error { return ErrTransportUnready }
func (Dummy) Pause() error { return ErrTransportUnready }
func (Dummy) IsPlaying() bool { return false }
func (Dummy) IsEnded() bool { return false }
func (Dummy) Duration() float64 { return 0 }
