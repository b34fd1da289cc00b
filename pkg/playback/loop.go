package playback

import (
	"context"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/observability"
)

// Loop calls tick at a fixed cadence for as long as tick returns true.
// Once it returned false the loop is idle until it is armed again.
type Loop struct {
	interval time.Duration
	tick     func(ctx context.Context) bool

	locker  sync.Mutex
	running bool
	rearmed bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLoop(
	interval time.Duration,
	tick func(ctx context.Context) bool,
) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Loop{
		interval: interval,
		tick:     tick,
	}
}

// Arm starts the loop unless it is already running. Arming a running loop
// guarantees at least one more tick after the call.
func (l *Loop) Arm(ctx context.Context) {
	l.locker.Lock()
	defer l.locker.Unlock()
	if l.running {
		l.rearmed = true
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.running = true
	l.rearmed = false
	l.cancel = cancel
	l.done = done
	logger.Tracef(ctx, "arming the loop with interval %v", l.interval)
	observability.Go(ctx, func() {
		defer close(done)
		l.run(ctx)
	})
}

func (l *Loop) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		keepGoing := l.tick(ctx)

		l.locker.Lock()
		if ctx.Err() != nil {
			l.locker.Unlock()
			return
		}
		if !keepGoing && !l.rearmed {
			l.running = false
			l.cancel()
			l.locker.Unlock()
			logger.Tracef(ctx, "the loop went idle")
			return
		}
		l.rearmed = false
		l.locker.Unlock()
	}
}

func (l *Loop) IsRunning() bool {
	l.locker.Lock()
	defer l.locker.Unlock()
	return l.running
}

// Stop cancels the loop and waits for the current tick to finish. It must
// not be called from within tick.
func (l *Loop) Stop() {
	l.locker.Lock()
	cancel, done := l.cancel, l.done
	l.running = false
	l.rearmed = false
	l.locker.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
