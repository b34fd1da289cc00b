package audio

// PCM is decoded audio in planar layout: Samples[channel][frame], values in
// [-1, 1]. A PCM is never modified after it was constructed, so it may be
// shared between goroutines freely.
type PCM struct {
	SampleRate SampleRate
	Samples    [][]float32
}

func NewPCM(
	sampleRate SampleRate,
	samples ...[]float32,
) *PCM {
	return &PCM{
		SampleRate: sampleRate,
		Samples:    samples,
	}
}

func (p *PCM) Channels() Channel {
	if p == nil {
		return 0
	}
	return Channel(len(p.Samples))
}

// Len returns the amount of frames (samples per channel).
func (p *PCM) Len() int {
	if p == nil || len(p.Samples) == 0 {
		return 0
	}
	return len(p.Samples[0])
}

// Duration returns the length in seconds.
func (p *PCM) Duration() float64 {
	if p == nil || p.SampleRate == 0 {
		return 0
	}
	return float64(p.Len()) / float64(p.SampleRate)
}

// Sample returns the sample of the channel at the frame, or 0 if the channel
// is shorter than the first one.
func (p *PCM) Sample(channel Channel, frame int) float32 {
	samples := p.Samples[channel]
	if frame >= len(samples) {
		return 0
	}
	return samples[frame]
}
