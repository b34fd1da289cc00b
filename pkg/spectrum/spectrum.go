// Package spectrum compares the frequency content of two tracks around a
// point in time.
package spectrum

import (
	"fmt"
	"math"

	"github.com/brettbuddin/fourier"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/audio/resampler"
)

const (
	// MaxWindowSize is the maximum number of samples in the analysis window.
	MaxWindowSize = 4096

	// MinWindowSize is the smallest window that still has a meaningful
	// frequency resolution.
	MinWindowSize = 64
)

// Similarity returns the cosine similarity (within [0, 1]) of the
// magnitude spectra of a and b, over a window centered at center seconds.
// Both tracks are downmixed to mono at the lower of their sample rates.
// A silent window has similarity 0.
func Similarity(
	a, b *audio.PCM,
	center float64,
) (float64, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return 0, fmt.Errorf("both tracks must be non-empty")
	}
	sampleRate := min(a.SampleRate, b.SampleRate)
	samplesA := resampler.Mono(a, sampleRate, 0)
	samplesB := resampler.Mono(b, sampleRate, 0)

	length := min(len(samplesA), len(samplesB))
	n := largestPowerOfTwo(min(length, MaxWindowSize))
	if n < MinWindowSize {
		return 0, fmt.Errorf("the tracks are too short for a spectral comparison: %d samples", length)
	}

	start := int(math.Round(center*float64(sampleRate))) - n/2
	start = max(0, min(start, length-n))

	spectrumA, err := magnitudes(samplesA[start : start+n])
	if err != nil {
		return 0, fmt.Errorf("unable to transform the first track: %w", err)
	}
	spectrumB, err := magnitudes(samplesB[start : start+n])
	if err != nil {
		return 0, fmt.Errorf("unable to transform the second track: %w", err)
	}
	return cosineSimilarity(spectrumA, spectrumB), nil
}

func largestPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// magnitudes applies a Hann window and returns the magnitudes of the
// non-negative frequency bins.
func magnitudes(samples []float64) ([]float64, error) {
	n := len(samples)
	coeffs := make([]complex128, n)
	for i, v := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		coeffs[i] = complex(v*w, 0)
	}
	if err := fourier.Forward(coeffs); err != nil {
		return nil, err
	}

	result := make([]float64, n/2+1)
	for i := range result {
		result[i] = math.Hypot(real(coeffs[i]), imag(coeffs[i]))
	}
	return result, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Min(dot/math.Sqrt(normA*normB), 1)
}
