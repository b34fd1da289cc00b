package session

import (
	"fmt"
)

type Status uint

const (
	StatusIdle = Status(iota)
	StatusRunning
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("unknown_status_%d", uint(s))
}
