package syncer

import (
	"context"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

type ShiftResult struct {
	// Shift is in seconds; a positive value means the comparison track
	// is ahead of the reference one.
	Shift float64

	// Confidence is within [0, 1].
	Confidence float64
}

type Syncer interface {
	// CalculateShiftBetween estimates how far each comparison track is
	// ahead of the reference track.
	CalculateShiftBetween(
		ctx context.Context,
		referenceTrack *audio.PCM,
		comparisonTracks ...*audio.PCM,
	) ([]ShiftResult, error)
}
