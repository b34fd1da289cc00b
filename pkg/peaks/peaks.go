// Package peaks reduces PCM buffers into an amplitude envelope suitable
// for charting and locates the loudest region of each buffer.
package peaks

import (
	"math"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

const (
	// MaxInspectedPerWindow bounds how many samples are looked at when
	// computing the peak of a single envelope slot.
	MaxInspectedPerWindow = 1000

	regionFraction    = 0.1
	regionMaxDuration = 5.0
)

// Point is one slot of the envelope. Amplitudes are in [0, 1]; a track
// that was not supplied has zero amplitude.
type Point struct {
	Time     float64
	Original float64
	Isolated float64
}

// Region is a time window (in seconds) around the loudest slot of a track.
type Region struct {
	Start     float64
	End       float64
	Amplitude float64
}

type Result struct {
	Points   []Point
	Original *Region
	Isolated *Region
	Duration float64
	Step     float64
}

type tracker struct {
	pcm      *audio.PCM
	maxValue float64
	maxTime  float64
}

func (tr *tracker) sample(t, step float64) float64 {
	if tr == nil {
		return 0
	}
	v := windowPeak(tr.pcm, t, step)
	if v > tr.maxValue {
		tr.maxValue = v
		tr.maxTime = t
	}
	return v
}

func (tr *tracker) region(duration float64) *Region {
	if tr == nil {
		return nil
	}
	halfWidth := math.Min(duration*regionFraction, regionMaxDuration) / 2
	return &Region{
		Start:     math.Max(0, tr.maxTime-halfWidth),
		End:       math.Min(duration, tr.maxTime+halfWidth),
		Amplitude: tr.maxValue,
	}
}

func newTracker(pcm *audio.PCM) *tracker {
	if pcm == nil {
		return nil
	}
	return &tracker{pcm: pcm}
}

// Extract builds a sampleCount long envelope spanning the longer of the two
// buffers, either of which may be nil. Only the first channel of each buffer
// is inspected.
func Extract(
	original, isolated *audio.PCM,
	sampleCount int,
) Result {
	duration := math.Max(original.Duration(), isolated.Duration())
	if sampleCount <= 0 || duration <= 0 {
		return Result{}
	}

	step := duration / float64(sampleCount)
	originalTracker := newTracker(original)
	isolatedTracker := newTracker(isolated)

	points := make([]Point, sampleCount)
	for i := range points {
		t := float64(i) * step
		points[i] = Point{
			Time:     t,
			Original: originalTracker.sample(t, step),
			Isolated: isolatedTracker.sample(t, step),
		}
	}

	return Result{
		Points:   points,
		Original: originalTracker.region(duration),
		Isolated: isolatedTracker.region(duration),
		Duration: duration,
		Step:     step,
	}
}

// windowPeak returns the peak absolute value of the first channel over
// [t, t+step), inspecting at most about MaxInspectedPerWindow samples.
func windowPeak(pcm *audio.PCM, t, step float64) float64 {
	if pcm.Channels() == 0 {
		return 0
	}
	samples := pcm.Samples[0]
	rate := float64(pcm.SampleRate)
	start := int(math.Floor(t * rate))
	end := int(math.Floor((t + step) * rate))
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return 0
	}

	stride := (end - start + MaxInspectedPerWindow - 1) / MaxInspectedPerWindow
	if stride < 1 {
		stride = 1
	}

	var peak float64
	for idx := start; idx < end; idx += stride {
		v := math.Abs(float64(samples[idx]))
		if v > peak {
			peak = v
		}
	}
	return math.Min(peak, 1)
}
