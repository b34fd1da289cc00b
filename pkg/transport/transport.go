// Package transport defines the media transports a comparison session
// plays back in lockstep.
package transport

import (
	"errors"
	"fmt"
	"math"
)

var ErrTransportUnready = errors.New("the transport is not ready")

type ID uint

const (
	IDOriginalVideo = ID(iota)
	IDMutedVideo
	IDIsolatedAudio
	EndOfID
)

func (id ID) String() string {
	switch id {
	case IDOriginalVideo:
		return "original-video"
	case IDMutedVideo:
		return "muted-video"
	case IDIsolatedAudio:
		return "isolated-audio"
	}
	return fmt.Sprintf("unknown_transport_%d", uint(id))
}

// IDs returns every known transport id in their canonical order.
func IDs() []ID {
	ids := make([]ID, 0, EndOfID)
	for id := ID(0); id < EndOfID; id++ {
		ids = append(ids, id)
	}
	return ids
}

// Handle is an independently clocked media transport. Positions and
// durations are in seconds.
type Handle interface {
	Position() float64
	Seek(position float64) error
	Play() error
	Pause() error
	IsPlaying() bool
	IsEnded() bool
	Duration() float64
}

type State struct {
	PositionSeconds float64
	IsPlaying       bool
	IsEnded         bool
}

func Snapshot(h Handle) State {
	return State{
		PositionSeconds: h.Position(),
		IsPlaying:       h.IsPlaying(),
		IsEnded:         h.IsEnded(),
	}
}

// ClampPosition limits position to [0, duration]; a non-positive duration
// means the duration is unknown and only the lower bound is applied.
func ClampPosition(position, duration float64) float64 {
	if position < 0 || math.IsNaN(position) {
		return 0
	}
	if duration > 0 && position > duration {
		return duration
	}
	return position
}
