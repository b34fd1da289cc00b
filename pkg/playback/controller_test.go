package playback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

type trio struct {
	original *fakeHandle
	muted    *fakeHandle
	isolated *fakeHandle
}

func (tr trio) all() []*fakeHandle {
	return []*fakeHandle{tr.original, tr.muted, tr.isolated}
}

func newTestController(t *testing.T) (*Controller, trio) {
	ctx := context.Background()
	c := NewController(ctx, Config{TickInterval: time.Hour})
	t.Cleanup(func() { _ = c.Close() })

	tr := trio{
		original: newFakeHandle(0),
		muted:    newFakeHandle(0),
		isolated: newFakeHandle(0),
	}
	c.Attach(ctx, transport.IDOriginalVideo, tr.original)
	c.Attach(ctx, transport.IDMutedVideo, tr.muted)
	c.Attach(ctx, transport.IDIsolatedAudio, tr.isolated)
	return c, tr
}

func TestGlobalPlayPauseLinked(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	tr.original.SetPosition(4)
	tr.muted.SetPosition(1)
	tr.isolated.SetPosition(9)

	require.Equal(t, PlayStateAllPaused, c.State())
	c.GlobalPlayPause(ctx)
	assert.Equal(t, PlayStateAllPlaying, c.State())
	for _, h := range tr.all() {
		assert.True(t, h.IsPlaying())
		assert.Equal(t, 4.0, h.Position())
	}
	assert.Empty(t, tr.original.Seeks())
	assert.True(t, c.Loop().IsRunning())

	c.GlobalPlayPause(ctx)
	assert.Equal(t, PlayStateAllPaused, c.State())
}

func TestGlobalPlayPauseUnlinked(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	c.SetSyncMode(ctx, SyncModeUnlinked)
	tr.muted.SetPosition(1)

	c.GlobalPlayPause(ctx)
	assert.Equal(t, PlayStateAllPlaying, c.State())
	assert.Equal(t, 1.0, tr.muted.Position())
	for _, h := range tr.all() {
		assert.Empty(t, h.Seeks())
	}
}

func TestGlobalPlayPausePausesIfAnyPlays(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	c.SetSyncMode(ctx, SyncModeUnlinked)
	c.ToggleTransport(ctx, transport.IDMutedVideo)
	require.Equal(t, PlayStatePartiallyPlaying, c.State())

	c.GlobalPlayPause(ctx)
	assert.Equal(t, PlayStateAllPaused, c.State())
	for _, h := range tr.all() {
		assert.False(t, h.IsPlaying())
	}
}

func TestToggleTransportLinked(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	tr.isolated.SetPosition(7)

	c.ToggleTransport(ctx, transport.IDIsolatedAudio)
	assert.Equal(t, transport.IDIsolatedAudio, c.Leader())
	assert.Equal(t, PlayStateAllPlaying, c.State())
	for _, h := range tr.all() {
		assert.Equal(t, 7.0, h.Position())
	}

	c.ToggleTransport(ctx, transport.IDMutedVideo)
	assert.Equal(t, PlayStateAllPaused, c.State())
	assert.Equal(t, transport.IDIsolatedAudio, c.Leader())
}

func TestToggleTransportUnlinked(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	c.SetSyncMode(ctx, SyncModeUnlinked)
	tr.muted.SetPosition(3)

	c.ToggleTransport(ctx, transport.IDMutedVideo)
	assert.True(t, tr.muted.IsPlaying())
	assert.False(t, tr.original.IsPlaying())
	assert.False(t, tr.isolated.IsPlaying())
	assert.Equal(t, transport.IDMutedVideo, c.Leader())
	assert.Equal(t, PlayStatePartiallyPlaying, c.State())
	assert.Empty(t, tr.original.Seeks())

	c.ToggleTransport(ctx, transport.IDMutedVideo)
	assert.Equal(t, PlayStateAllPaused, c.State())
}

func TestSeekMovesAllInBothModes(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []SyncMode{SyncModeLinked, SyncModeUnlinked} {
		t.Run(mode.String(), func(t *testing.T) {
			c, tr := newTestController(t)
			c.SetSyncMode(ctx, mode)
			c.Seek(ctx, 12.5)
			for _, h := range tr.all() {
				assert.Equal(t, 12.5, h.Position())
			}
		})
	}
}

func TestSetSyncModeIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	c, tr := newTestController(t)
	c.SetSyncMode(ctx, SyncModeUnlinked)
	c.GlobalPlayPause(ctx)
	tr.muted.SetPosition(5)

	c.SetSyncMode(ctx, SyncModeLinked)
	assert.Equal(t, SyncModeLinked, c.SyncMode())
	assert.Equal(t, 5.0, tr.muted.Position())

	assert.True(t, c.Tick(ctx))
	assert.Equal(t, 0.0, tr.muted.Position())
}

func TestMissingAndUnreadyTransports(t *testing.T) {
	ctx := context.Background()
	c := NewController(ctx, Config{TickInterval: time.Hour})
	defer c.Close()

	assert.NotPanics(t, func() {
		c.GlobalPlayPause(ctx)
		c.ToggleTransport(ctx, transport.IDMutedVideo)
		c.Seek(ctx, 3)
	})
	assert.Equal(t, PlayStateAllPaused, c.State())
	assert.False(t, c.Tick(ctx))

	unready := newFakeHandle(0)
	unready.unready = true
	ready := newFakeHandle(2)
	c.Attach(ctx, transport.IDIsolatedAudio, unready)
	c.Attach(ctx, transport.IDMutedVideo, ready)

	c.GlobalPlayPause(ctx)
	assert.True(t, ready.IsPlaying())
	assert.False(t, unready.IsPlaying())
	assert.Equal(t, PlayStatePartiallyPlaying, c.State())

	assert.Equal(t, unready, c.Detach(ctx, transport.IDIsolatedAudio))
	assert.Nil(t, c.Detach(ctx, transport.IDIsolatedAudio))
	assert.Equal(t, PlayStateAllPlaying, c.State())
}

func TestSchedulerLoopCorrectsAndGoesIdle(t *testing.T) {
	ctx := context.Background()
	samples := make(chan Sample, 100)
	c := NewController(ctx, Config{
		TickInterval: time.Millisecond,
		OnSample: func(s Sample) {
			select {
			case samples <- s:
			default:
			}
		},
	})
	defer c.Close()

	original := newFakeHandle(0)
	muted := newFakeHandle(0)
	c.Attach(ctx, transport.IDOriginalVideo, original)
	c.Attach(ctx, transport.IDMutedVideo, muted)

	c.GlobalPlayPause(ctx)
	original.SetPosition(3)

	require.Eventually(t, func() bool {
		return muted.Position() == 3
	}, 5*time.Second, time.Millisecond)

	c.GlobalPlayPause(ctx)
	require.Eventually(t, func() bool {
		return !c.Loop().IsRunning()
	}, 5*time.Second, time.Millisecond)
	require.NotEmpty(t, samples)

	c.ToggleTransport(ctx, transport.IDMutedVideo)
	assert.True(t, c.Loop().IsRunning())
	assert.Equal(t, transport.IDMutedVideo, c.Leader())
}

func TestTickFallsBackToFirstAttachedLeader(t *testing.T) {
	ctx := context.Background()
	c := NewController(ctx, Config{TickInterval: time.Hour})
	t.Cleanup(func() { _ = c.Close() })

	muted := newFakeHandle(0)
	isolated := newFakeHandle(0)
	c.Attach(ctx, transport.IDMutedVideo, muted)
	c.Attach(ctx, transport.IDIsolatedAudio, isolated)

	c.GlobalPlayPause(ctx)
	require.True(t, isolated.IsPlaying())
	isolated.SetPosition(1.0)

	assert.True(t, c.Tick(ctx))
	assert.Equal(t, 0.0, isolated.Position())
	assert.Equal(t, []float64{0, 0}, isolated.Seeks())

	sample := c.Scheduler().LastSample()
	assert.Equal(t, transport.IDMutedVideo, sample.Leader)
	assert.Equal(t, []transport.ID{transport.IDIsolatedAudio}, sample.Corrected)
	assert.Equal(t, transport.IDOriginalVideo, c.Leader())
}
