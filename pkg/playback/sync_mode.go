package playback

import (
	"fmt"
)

type SyncMode uint

const (
	// SyncModeLinked keeps the followers aligned with the leader and fans
	// every play/pause command out to all transports.
	SyncModeLinked = SyncMode(iota)

	// SyncModeUnlinked lets every transport play on its own.
	SyncModeUnlinked
)

func (m SyncMode) String() string {
	switch m {
	case SyncModeLinked:
		return "linked"
	case SyncModeUnlinked:
		return "unlinked"
	}
	return fmt.Sprintf("unknown_sync_mode_%d", uint(m))
}

type PlayState uint

const (
	PlayStateAllPaused = PlayState(iota)
	PlayStateAllPlaying
	PlayStatePartiallyPlaying
)

func (s PlayState) String() string {
	switch s {
	case PlayStateAllPaused:
		return "all-paused"
	case PlayStateAllPlaying:
		return "all-playing"
	case PlayStatePartiallyPlaying:
		return "partially-playing"
	}
	return fmt.Sprintf("unknown_play_state_%d", uint(s))
}
