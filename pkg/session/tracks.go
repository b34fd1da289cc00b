package session

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/transport"
	"github.com/xaionaro-go/avcompare/pkg/transport/implementations/clock"
	"github.com/xaionaro-go/avcompare/pkg/transport/implementations/pcm"
)

// AttachTracks attaches a transport for every track analysis decoded, played
// through player, and a clock for the muted video spanning the longest one.
// The clock is attached even if nothing decoded; analysis may be nil.
func (s *Session) AttachTracks(
	ctx context.Context,
	player *audio.Player,
	analysis *Analysis,
) error {
	var mErr *multierror.Error
	var duration float64
	if analysis != nil {
		duration = math.Max(analysis.Original.Duration(), analysis.Isolated.Duration())
		if err := s.attachPCM(ctx, transport.IDOriginalVideo, player, analysis.Original); err != nil {
			mErr = multierror.Append(mErr, err)
		}
		if err := s.attachPCM(ctx, transport.IDIsolatedAudio, player, analysis.Isolated); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	if err := s.Attach(ctx, transport.IDMutedVideo, clock.New(duration)); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	return mErr.ErrorOrNil()
}

func (s *Session) attachPCM(
	ctx context.Context,
	id transport.ID,
	player *audio.Player,
	track *audio.PCM,
) error {
	if track == nil {
		return nil
	}
	t, err := pcm.New(ctx, player, track)
	if err != nil {
		return fmt.Errorf("unable to play the %v track: %w", id, err)
	}
	return s.Attach(ctx, id, t)
}
