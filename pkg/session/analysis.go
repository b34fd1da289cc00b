package session

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/peaks"
	"github.com/xaionaro-go/avcompare/pkg/spectrum"
	"github.com/xaionaro-go/avcompare/pkg/syncer"
)

// Sources are the encoded media files; an empty one means the track is
// absent.
type Sources struct {
	Original []byte
	Isolated []byte
}

// Analysis is the outcome of Session.Analyze. If a track failed to decode,
// only Original and Isolated are filled, with whatever did decode.
type Analysis struct {
	Original *audio.PCM
	Isolated *audio.PCM
	Peaks    peaks.Result

	// Offset is how far the isolated track is ahead of the original one.
	// It is nil if it could not be estimated reliably.
	Offset *syncer.ShiftResult

	// Similarity of the spectra around the isolated track's peak, within
	// [0, 1]. It is nil unless both tracks are present.
	Similarity *float64
}

func (s *Session) analyze(
	ctx context.Context,
	src Sources,
) (*Analysis, error) {
	var mErr *multierror.Error
	original, err := s.decode(ctx, "original", src.Original)
	if err != nil {
		mErr = multierror.Append(mErr, err)
	}
	isolated, err := s.decode(ctx, "isolated", src.Isolated)
	if err != nil {
		mErr = multierror.Append(mErr, err)
	}
	if err := mErr.ErrorOrNil(); err != nil {
		// the tracks that did decode stay playable
		return &Analysis{Original: original, Isolated: isolated}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Analysis{
		Original: original,
		Isolated: isolated,
		Peaks:    peaks.Extract(original, isolated, s.Config.SampleCount),
	}
	if original == nil || isolated == nil {
		return result, nil
	}

	result.Offset = s.estimateOffset(ctx, original, isolated)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	center := result.Peaks.Duration / 2
	if r := result.Peaks.Isolated; r != nil {
		center = (r.Start + r.End) / 2
	}
	similarity, err := spectrum.Similarity(original, isolated, center)
	if err != nil {
		logger.Debugf(ctx, "unable to compare the spectra at %.3fs: %v", center, err)
	} else {
		result.Similarity = &similarity
	}
	return result, nil
}

func (s *Session) decode(
	ctx context.Context,
	name string,
	data []byte,
) (*audio.PCM, error) {
	if len(data) == 0 {
		return nil, nil
	}
	pcm, err := s.Config.Decoder.Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode the %s track: %w", name, err)
	}
	logger.Debugf(ctx, "decoded the %s track: %d channels, %d Hz, %.3fs", name, pcm.Channels(), pcm.SampleRate, pcm.Duration())
	return pcm, nil
}

func (s *Session) estimateOffset(
	ctx context.Context,
	original, isolated *audio.PCM,
) *syncer.ShiftResult {
	shifts, err := s.Config.Syncer.CalculateShiftBetween(ctx, original, isolated)
	if err != nil {
		logger.Debugf(ctx, "unable to estimate the offset: %v", err)
		return nil
	}
	if len(shifts) != 1 {
		logger.Warnf(ctx, "expected one offset, received %d", len(shifts))
		return nil
	}
	shift := shifts[0]
	if s.Config.MaxOffset > 0 && math.Abs(shift.Shift) > s.Config.MaxOffset {
		logger.Debugf(ctx, "the offset %.3fs exceeds %.3fs, ignoring it", shift.Shift, s.Config.MaxOffset)
		return nil
	}
	return &shift
}
