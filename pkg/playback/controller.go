package playback

import (
	"context"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/avcompare/pkg/metrics"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

type Config struct {
	TickInterval time.Duration
	Metrics      *metrics.Metrics
	OnSample     func(Sample)
}

// Controller drives up to three transports. User commands and scheduler
// ticks are serialized by a single mutex, so they never interleave.
//
// Commands on missing or unready transports are no-ops: handle errors are
// logged and never returned.
type Controller struct {
	locker    sync.Mutex
	handles   map[transport.ID]transport.Handle
	mode      SyncMode
	leader    transport.ID
	scheduler *Scheduler
	loop      *Loop
	loopCtx   context.Context
	cancel    context.CancelFunc
}

// NewController returns a linked controller with the original video as the
// leader. The scheduler loop lives until ctx is done or Close is called.
func NewController(
	ctx context.Context,
	cfg Config,
) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		handles:   map[transport.ID]transport.Handle{},
		mode:      SyncModeLinked,
		leader:    transport.IDOriginalVideo,
		scheduler: NewScheduler(cfg.Metrics, cfg.OnSample),
		loopCtx:   ctx,
		cancel:    cancel,
	}
	c.loop = NewLoop(cfg.TickInterval, c.Tick)
	return c
}

func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

func (c *Controller) Loop() *Loop {
	return c.loop
}

// Attach replaces the transport under id. If the new transport already
// plays, the scheduler is armed.
func (c *Controller) Attach(
	ctx context.Context,
	id transport.ID,
	h transport.Handle,
) {
	c.locker.Lock()
	c.handles[id] = h
	playing := h.IsPlaying()
	c.locker.Unlock()
	logger.Debugf(ctx, "attached %v (%T)", id, h)
	if playing {
		c.armScheduler()
	}
}

// Detach removes the transport under id and returns it (nil if none).
func (c *Controller) Detach(
	ctx context.Context,
	id transport.ID,
) transport.Handle {
	c.locker.Lock()
	defer c.locker.Unlock()
	h := c.handles[id]
	delete(c.handles, id)
	logger.Debugf(ctx, "detached %v", id)
	return h
}

func (c *Controller) Handle(id transport.ID) transport.Handle {
	c.locker.Lock()
	defer c.locker.Unlock()
	return c.handles[id]
}

// GlobalPlayPause pauses everything if anything plays. Otherwise it starts
// every transport, aligning the followers with the leader first when linked.
func (c *Controller) GlobalPlayPause(ctx context.Context) {
	c.locker.Lock()
	defer c.locker.Unlock()

	if len(c.handles) == 0 {
		logger.Debugf(ctx, "GlobalPlayPause: no transports attached")
		return
	}

	if c.anyPlayingLocked() {
		logger.Debugf(ctx, "GlobalPlayPause: pausing all")
		c.pauseAllLocked(ctx)
		return
	}

	if c.mode == SyncModeLinked {
		leaderID, leader := c.leaderLocked()
		position := leader.Position()
		logger.Debugf(ctx, "GlobalPlayPause: aligning with %v at %.3fs and playing all", leaderID, position)
		c.seekOthersLocked(ctx, leaderID, position)
	} else {
		logger.Debugf(ctx, "GlobalPlayPause: playing all")
	}
	c.playAllLocked(ctx)
	c.armScheduler()
}

// ToggleTransport pauses or plays the transport under id. When linked the
// action is fanned out as well, with the others seeked to its position
// before playing. A toggle that starts the playback makes id the leader.
func (c *Controller) ToggleTransport(
	ctx context.Context,
	id transport.ID,
) {
	c.locker.Lock()
	defer c.locker.Unlock()

	h, ok := c.handles[id]
	if !ok {
		logger.Debugf(ctx, "ToggleTransport: %v is not attached", id)
		return
	}

	if h.IsPlaying() {
		if c.mode == SyncModeLinked {
			logger.Debugf(ctx, "ToggleTransport: pausing all via %v", id)
			c.pauseAllLocked(ctx)
			return
		}
		logger.Debugf(ctx, "ToggleTransport: pausing %v", id)
		logIfFailed(ctx, h.Pause(), "pause", id)
		return
	}

	c.leader = id
	if c.mode == SyncModeLinked {
		position := h.Position()
		logger.Debugf(ctx, "ToggleTransport: playing all via %v at %.3fs", id, position)
		c.seekOthersLocked(ctx, id, position)
		c.playAllLocked(ctx)
	} else {
		logger.Debugf(ctx, "ToggleTransport: playing %v", id)
		logIfFailed(ctx, h.Play(), "play", id)
	}
	c.armScheduler()
}

// Seek moves every attached transport to position, regardless of the sync
// mode.
func (c *Controller) Seek(
	ctx context.Context,
	position float64,
) {
	c.locker.Lock()
	defer c.locker.Unlock()
	logger.Debugf(ctx, "Seek: %.3fs", position)
	for _, id := range transport.IDs() {
		if h, ok := c.handles[id]; ok {
			logIfFailed(ctx, h.Seek(position), "seek", id)
		}
	}
}

// SetSyncMode switches the mode; existing drift is not corrected until
// the next tick.
func (c *Controller) SetSyncMode(
	ctx context.Context,
	mode SyncMode,
) {
	c.locker.Lock()
	defer c.locker.Unlock()
	logger.Debugf(ctx, "SetSyncMode: %v -> %v", c.mode, mode)
	c.mode = mode
}

func (c *Controller) SyncMode() SyncMode {
	c.locker.Lock()
	defer c.locker.Unlock()
	return c.mode
}

func (c *Controller) Leader() transport.ID {
	c.locker.Lock()
	defer c.locker.Unlock()
	return c.leader
}

func (c *Controller) State() PlayState {
	c.locker.Lock()
	defer c.locker.Unlock()

	playing := 0
	for _, h := range c.handles {
		if h.IsPlaying() {
			playing++
		}
	}
	switch {
	case playing == 0:
		return PlayStateAllPaused
	case playing == len(c.handles):
		return PlayStateAllPlaying
	}
	return PlayStatePartiallyPlaying
}

func (c *Controller) States() map[transport.ID]transport.State {
	c.locker.Lock()
	defer c.locker.Unlock()
	states := make(map[transport.ID]transport.State, len(c.handles))
	for id, h := range c.handles {
		states[id] = transport.Snapshot(h)
	}
	return states
}

// Tick runs one scheduler iteration and reports whether anything still
// plays.
func (c *Controller) Tick(ctx context.Context) bool {
	c.locker.Lock()
	leaderID := c.leader
	if len(c.handles) > 0 {
		leaderID, _ = c.leaderLocked()
	}
	sample := c.scheduler.Synchronize(ctx, c.mode, leaderID, c.handles)
	c.locker.Unlock()

	c.scheduler.notify(sample)
	anyPlaying := sample.AnyPlaying()
	c.scheduler.Metrics.SetSchedulerRunning(anyPlaying)
	return anyPlaying
}

// Close stops the scheduler loop. The transports are not closed.
func (c *Controller) Close() error {
	c.cancel()
	c.loop.Stop()
	c.scheduler.Metrics.SetSchedulerRunning(false)
	return nil
}

func (c *Controller) armScheduler() {
	c.loop.Arm(c.loopCtx)
	c.scheduler.Metrics.SetSchedulerRunning(true)
}

// leaderLocked returns the leader, or the first attached transport if the
// leader is not attached. There must be at least one transport attached.
func (c *Controller) leaderLocked() (transport.ID, transport.Handle) {
	if h, ok := c.handles[c.leader]; ok {
		return c.leader, h
	}
	for _, id := range transport.IDs() {
		if h, ok := c.handles[id]; ok {
			return id, h
		}
	}
	panic("no transports attached")
}

func (c *Controller) anyPlayingLocked() bool {
	for _, h := range c.handles {
		if h.IsPlaying() {
			return true
		}
	}
	return false
}

func (c *Controller) pauseAllLocked(ctx context.Context) {
	for _, id := range transport.IDs() {
		if h, ok := c.handles[id]; ok {
			logIfFailed(ctx, h.Pause(), "pause", id)
		}
	}
}

func (c *Controller) playAllLocked(ctx context.Context) {
	for _, id := range transport.IDs() {
		if h, ok := c.handles[id]; ok {
			logIfFailed(ctx, h.Play(), "play", id)
		}
	}
}

func (c *Controller) seekOthersLocked(
	ctx context.Context,
	except transport.ID,
	position float64,
) {
	for _, id := range transport.IDs() {
		if h, ok := c.handles[id]; ok && id != except {
			logIfFailed(ctx, h.Seek(position), "seek", id)
		}
	}
}

func logIfFailed(
	ctx context.Context,
	err error,
	action string,
	id transport.ID,
) {
	if err == nil {
		return
	}
	logger.Debugf(ctx, "unable to %s %v, ignoring: %v", action, id, err)
}
