// Package gccphat estimates the delay between two tracks using the
// Generalized Cross-Correlation with Phase Transform (GCC-PHAT).
//
// The cross-power spectrum is normalized to unit magnitude, so only the
// phase (which encodes the delay) contributes to the correlation peak.
// This makes the estimate robust against volume differences and
// against the isolated track missing some of the original's content.
package gccphat

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/audio/resampler"
	"github.com/xaionaro-go/avcompare/pkg/syncer"
)

type Syncer struct {
	SampleRate  audio.SampleRate
	MaxDuration float64
	MinFreq     float64
	MaxFreq     float64
}

var _ syncer.Syncer = (*Syncer)(nil)

// NewSyncer returns a syncer that compares the first maxDuration seconds
// of the tracks (all of them if maxDuration is not positive), downmixed to
// mono at sampleRate.
func NewSyncer(
	sampleRate audio.SampleRate,
	maxDuration float64,
) (*Syncer, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("the sample rate is mandatory")
	}

	return &Syncer{
		SampleRate:  sampleRate,
		MaxDuration: maxDuration,
		// 100Hz to 12000Hz captures most informative audio while filtering
		// out low-frequency rumble and high-frequency digital noise.
		MinFreq: 100,
		MaxFreq: 12000,
	}, nil
}

func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	referenceTrack *audio.PCM,
	comparisonTracks ...*audio.PCM,
) ([]syncer.ShiftResult, error) {
	refSamples := resampler.Mono(referenceTrack, s.SampleRate, s.MaxDuration)
	if len(refSamples) == 0 {
		return nil, fmt.Errorf("the reference track is empty")
	}

	results := make([]syncer.ShiftResult, len(comparisonTracks))
	for i, comparisonTrack := range comparisonTracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		compSamples := resampler.Mono(comparisonTrack, s.SampleRate, s.MaxDuration)
		if len(compSamples) == 0 {
			return nil, fmt.Errorf("the comparison track %d is empty", i)
		}

		// the next power of two of (n1 + n2 - 1) avoids circular
		// convolution artifacts
		n := 1
		for n < len(refSamples)+len(compSamples)-1 {
			n <<= 1
		}

		fref := fft.FFT(padded(refSamples, n))
		fcomp := fft.FFT(padded(compSamples, n))

		shift, confidence, err := CrossCorrelate(fref, fcomp, float64(s.SampleRate), s.MinFreq, s.MaxFreq)
		if err != nil {
			return nil, fmt.Errorf("unable to cross-correlate track %d: %w", i, err)
		}
		logger.Debugf(ctx, "track %d: shift %.1f samples at %d Hz, confidence %.3f", i, shift, s.SampleRate, confidence)
		results[i] = syncer.ShiftResult{
			Shift:      shift / float64(s.SampleRate),
			Confidence: confidence,
		}
	}
	return results, nil
}

func padded(samples []float64, n int) []complex128 {
	result := make([]complex128, n)
	for i, v := range samples {
		result[i] = complex(v, 0)
	}
	return result
}
