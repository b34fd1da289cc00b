package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/avcompare/pkg/metrics"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

const (
	// DriftTolerance is the largest follower offset (in seconds) from the
	// leader that is left uncorrected.
	DriftTolerance = 0.15

	DefaultTickInterval = 16 * time.Millisecond
)

// Sample is what a single scheduler tick observed.
type Sample struct {
	Mode   SyncMode
	Leader transport.ID
	States map[transport.ID]transport.State

	// Drift is the follower position minus the leader position, measured
	// before any correction. It is only filled while linked and the leader
	// plays.
	Drift map[transport.ID]float64

	// Corrected lists the followers that were seeked to the leader.
	Corrected []transport.ID
}

func (s Sample) AnyPlaying() bool {
	for _, state := range s.States {
		if state.IsPlaying {
			return true
		}
	}
	return false
}

// Scheduler keeps the followers within DriftTolerance of the leader.
type Scheduler struct {
	Metrics  *metrics.Metrics
	OnSample func(Sample)

	lastSampleLocker sync.Mutex
	lastSample       Sample
}

func NewScheduler(
	m *metrics.Metrics,
	onSample func(Sample),
) *Scheduler {
	return &Scheduler{
		Metrics:  m,
		OnSample: onSample,
	}
}

// Synchronize reads every transport and, if linked and the leader plays,
// snaps each follower that drifted too far to the leader position.
// Ended followers are left alone.
func (s *Scheduler) Synchronize(
	ctx context.Context,
	mode SyncMode,
	leaderID transport.ID,
	handles map[transport.ID]transport.Handle,
) Sample {
	startedAt := time.Now()
	sample := Sample{
		Mode:   mode,
		Leader: leaderID,
		States: make(map[transport.ID]transport.State, len(handles)),
	}
	for id, h := range handles {
		sample.States[id] = transport.Snapshot(h)
	}

	leaderState, hasLeader := sample.States[leaderID]
	if mode == SyncModeLinked && hasLeader && leaderState.IsPlaying {
		sample.Drift = map[transport.ID]float64{}
		leaderPos := leaderState.PositionSeconds
		for _, id := range transport.IDs() {
			h, ok := handles[id]
			if !ok || id == leaderID {
				continue
			}
			state := sample.States[id]
			if state.IsEnded {
				continue
			}

			drift := state.PositionSeconds - leaderPos
			sample.Drift[id] = drift
			s.Metrics.ObserveDrift(id.String(), drift)
			if math.Abs(drift) <= DriftTolerance {
				continue
			}

			err := h.Seek(leaderPos)
			s.Metrics.CorrectiveSeek(id.String(), err)
			if err != nil {
				logger.Warnf(ctx, "unable to realign %v with %v (drift %.3fs): %v", id, leaderID, drift, err)
				continue
			}
			logger.Tracef(ctx, "realigned %v with %v: drift was %.3fs", id, leaderID, drift)
			state.PositionSeconds = leaderPos
			sample.States[id] = state
			sample.Corrected = append(sample.Corrected, id)
		}
	}

	s.Metrics.ObserveTick(time.Since(startedAt).Seconds())
	s.lastSampleLocker.Lock()
	s.lastSample = sample
	s.lastSampleLocker.Unlock()
	return sample
}

func (s *Scheduler) LastSample() Sample {
	s.lastSampleLocker.Lock()
	defer s.lastSampleLocker.Unlock()
	return s.lastSample
}

func (s *Scheduler) notify(sample Sample) {
	if s.OnSample != nil {
		s.OnSample(sample)
	}
}
