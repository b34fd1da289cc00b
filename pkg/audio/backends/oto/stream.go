package oto

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xaionaro-go/avcompare/pkg/audio/types"
)

type Stream struct {
	Player *oto.Player
}

var _ types.PlayStream = (*Stream)(nil)

func newStream(player *oto.Player) *Stream {
	return &Stream{
		Player: player,
	}
}

// Drain blocks until everything buffered was played out.
func (s *Stream) Drain() error {
	for s.Player.IsPlaying() && s.Player.BufferedSize() > 0 {
		time.Sleep(BufferSize / 10)
	}
	if err := s.Player.Err(); err != nil {
		return fmt.Errorf("an error occurred during playback: %w", err)
	}
	return nil
}

func (s *Stream) Close() error {
	s.Player.Pause()
	return s.Player.Close()
}
