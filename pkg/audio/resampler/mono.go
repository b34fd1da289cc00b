package resampler

import (
	"github.com/xaionaro-go/avcompare/pkg/audio"
)

// Mono downmixes pcm by averaging its channels and resamples the result to
// sampleRate. Only the first maxSeconds seconds are returned; a non-positive
// maxSeconds returns everything.
func Mono(
	pcm *audio.PCM,
	sampleRate audio.SampleRate,
	maxSeconds float64,
) []float64 {
	if pcm.Len() == 0 || pcm.SampleRate == 0 || sampleRate == 0 {
		return nil
	}

	outLen := int(uint64(pcm.Len()) * uint64(sampleRate) / uint64(pcm.SampleRate))
	if maxSeconds > 0 {
		if limit := int(maxSeconds * float64(sampleRate)); limit < outLen {
			outLen = limit
		}
	}

	channels := pcm.Channels()
	result := make([]float64, outLen)
	for idx := range result {
		src := int(uint64(idx) * uint64(pcm.SampleRate) / uint64(sampleRate))
		var sum float64
		for ch := audio.Channel(0); ch < channels; ch++ {
			sum += float64(pcm.Sample(ch, src))
		}
		result[idx] = sum / float64(channels)
	}
	return result
}
