package gccphat

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// bins below this fraction of the strongest cross-power bin are not
// whitened (about -60dB)
const relativeEnergyThreshold = 0.001

// CrossCorrelate returns the shift (in samples) of comparison relative to
// reference and a confidence in [0, 1], given the FFTs of both (of equal
// length). Only bins within [minFreq, maxFreq] are used; zero disables a
// bound. A positive shift means the comparison leads the reference.
func CrossCorrelate(
	reference, comparison []complex128,
	sampleRate float64,
	minFreq, maxFreq float64,
) (float64, float64, error) {
	if sampleRate <= 0 {
		return 0, 0, fmt.Errorf("the sample rate must be positive: got %v", sampleRate)
	}
	if len(reference) != len(comparison) {
		return 0, 0, fmt.Errorf("the spectra must have the same length: %d != %d", len(reference), len(comparison))
	}
	n := len(reference)
	if n == 0 {
		return 0, 0, nil
	}

	binMin, binMax := bandBins(n, sampleRate, minFreq, maxFreq)
	whitened, activeBins := phaseTransform(reference, comparison, binMin, binMax)
	if activeBins == 0 {
		return 0, 0, nil
	}

	correlation := fft.IFFT(whitened)
	peakIdx, peakValue := findPeak(correlation)

	lag := float64(peakIdx)
	if peakIdx > n/2 {
		lag -= float64(n)
	}
	lag += parabolicOffset(correlation, peakIdx)

	// a perfect match yields a peak of activeBins/n, since every active bin
	// has magnitude 1 and the inverse transform divides by n
	confidence := math.Min(peakValue*float64(n)/float64(activeBins), 1)

	// comparison(t) = reference(t - lag), so a positive lag means the
	// comparison is late
	return -lag, confidence, nil
}

func bandBins(n int, sampleRate, minFreq, maxFreq float64) (int, int) {
	binMin, binMax := 0, n/2
	if minFreq > 0 {
		binMin = int(minFreq * float64(n) / sampleRate)
	}
	if maxFreq > 0 && maxFreq < sampleRate/2 {
		binMax = int(maxFreq * float64(n) / sampleRate)
	}
	return binMin, binMax
}

// phaseTransform returns the cross-power spectrum with every sufficiently
// strong in-band bin normalized to unit magnitude.
func phaseTransform(
	reference, comparison []complex128,
	binMin, binMax int,
) ([]complex128, int) {
	n := len(reference)
	cross := make([]complex128, n)
	var maxMag float64
	for i := range cross {
		cross[i] = comparison[i] * cmplx.Conj(reference[i])
		maxMag = math.Max(maxMag, cmplx.Abs(cross[i]))
	}
	threshold := math.Max(maxMag*relativeEnergyThreshold, 1e-12)

	activeBins := 0
	for i, v := range cross {
		freqBin := i
		if i > n/2 {
			freqBin = n - i
		}
		mag := cmplx.Abs(v)
		if freqBin < binMin || freqBin > binMax || mag <= threshold {
			cross[i] = 0
			continue
		}
		cross[i] = v / complex(mag, 0)
		activeBins++
	}
	return cross, activeBins
}

func findPeak(values []complex128) (int, float64) {
	peakIdx, peakValue := 0, -1.0
	for i, v := range values {
		if mag := cmplx.Abs(v); mag > peakValue {
			peakIdx, peakValue = i, mag
		}
	}
	return peakIdx, peakValue
}

// parabolicOffset refines the peak position to a fraction of a sample.
func parabolicOffset(values []complex128, idx int) float64 {
	if idx <= 0 || idx >= len(values)-1 {
		return 0
	}
	y1 := cmplx.Abs(values[idx-1])
	y2 := cmplx.Abs(values[idx])
	y3 := cmplx.Abs(values[idx+1])
	denom := y1 - 2*y2 + y3
	if math.Abs(denom) <= 1e-12 {
		return 0
	}
	return (y1 - y3) / (2 * denom)
}
