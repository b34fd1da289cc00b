package playback

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/metrics"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

func playingTrio(leaderPos, mutedPos, isolatedPos float64) (map[transport.ID]transport.Handle, *fakeHandle, *fakeHandle, *fakeHandle) {
	original := newFakeHandle(leaderPos)
	muted := newFakeHandle(mutedPos)
	isolated := newFakeHandle(isolatedPos)
	for _, h := range []*fakeHandle{original, muted, isolated} {
		h.playing = true
	}
	return map[transport.ID]transport.Handle{
		transport.IDOriginalVideo: original,
		transport.IDMutedVideo:    muted,
		transport.IDIsolatedAudio: isolated,
	}, original, muted, isolated
}

func TestSynchronizeSnapsDriftedFollowers(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	s := NewScheduler(m, nil)

	handles, original, muted, isolated := playingTrio(10, 10.2, 10.1)
	sample := s.Synchronize(ctx, SyncModeLinked, transport.IDOriginalVideo, handles)

	assert.Equal(t, 10.0, muted.Position())
	assert.Equal(t, 10.1, isolated.Position())
	assert.Empty(t, original.Seeks())
	assert.Empty(t, isolated.Seeks())
	assert.Equal(t, []transport.ID{transport.IDMutedVideo}, sample.Corrected)
	assert.InDelta(t, 0.2, sample.Drift[transport.IDMutedVideo], 1e-9)
	assert.Equal(t, 10.0, sample.States[transport.IDMutedVideo].PositionSeconds)
	assert.True(t, sample.AnyPlaying())
	assert.Equal(t, sample, s.LastSample())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CorrectiveSeeks.WithLabelValues("muted-video")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchedulerTicks))
}

func TestSynchronizeWithinTolerance(t *testing.T) {
	handles, _, muted, isolated := playingTrio(5, 5.1, 4.9)
	sample := NewScheduler(nil, nil).Synchronize(context.Background(), SyncModeLinked, transport.IDOriginalVideo, handles)
	assert.Empty(t, sample.Corrected)
	assert.Empty(t, muted.Seeks())
	assert.Empty(t, isolated.Seeks())
}

func TestSynchronizeIsDirectional(t *testing.T) {
	handles, original, muted, isolated := playingTrio(3, 1, 5)
	NewScheduler(nil, nil).Synchronize(context.Background(), SyncModeLinked, transport.IDIsolatedAudio, handles)
	assert.Equal(t, 5.0, original.Position())
	assert.Equal(t, 5.0, muted.Position())
	assert.Empty(t, isolated.Seeks())
}

func TestSynchronizeUnlinked(t *testing.T) {
	handles, _, muted, _ := playingTrio(1, 7, 3)
	sample := NewScheduler(nil, nil).Synchronize(context.Background(), SyncModeUnlinked, transport.IDOriginalVideo, handles)
	assert.Empty(t, muted.Seeks())
	assert.Nil(t, sample.Drift)
	assert.Len(t, sample.States, 3)
	assert.Equal(t, 7.0, sample.States[transport.IDMutedVideo].PositionSeconds)
}

func TestSynchronizeLeaderPaused(t *testing.T) {
	handles, original, muted, _ := playingTrio(1, 7, 3)
	original.playing = false
	sample := NewScheduler(nil, nil).Synchronize(context.Background(), SyncModeLinked, transport.IDOriginalVideo, handles)
	assert.Empty(t, muted.Seeks())
	assert.True(t, sample.AnyPlaying())
}

func TestSynchronizeSkipsEndedAndFailingFollowers(t *testing.T) {
	handles, _, muted, isolated := playingTrio(10, 4, 2)
	muted.playing = false
	muted.ended = true
	isolated.unready = true

	m := metrics.NewMetrics(prometheus.NewRegistry())
	sample := NewScheduler(m, nil).Synchronize(context.Background(), SyncModeLinked, transport.IDOriginalVideo, handles)
	assert.Empty(t, sample.Corrected)
	assert.Equal(t, 4.0, muted.Position())
	assert.Equal(t, 2.0, isolated.Position())
	_, hasMutedDrift := sample.Drift[transport.IDMutedVideo]
	assert.False(t, hasMutedDrift)
	require.Contains(t, sample.Drift, transport.IDIsolatedAudio)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeekErrors.WithLabelValues("isolated-audio")))
}

func TestSampleAnyPlaying(t *testing.T) {
	assert.False(t, Sample{}.AnyPlaying())
	assert.False(t, Sample{States: map[transport.ID]transport.State{
		transport.IDMutedVideo: {PositionSeconds: 3},
	}}.AnyPlaying())
}
