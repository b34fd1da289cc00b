package planar

import (
	"fmt"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

// Planarize converts interleaved samples (frame after frame) into planar
// ones (channel after channel).
func Planarize(channels audio.Channel, sampleSize uint, output, input []byte) error {
	frames, err := checkLayout(channels, sampleSize, output, input)
	if err != nil {
		return err
	}
	transpose(frames, int(channels), int(sampleSize), output, input)
	return nil
}

// Unplanarize converts planar samples (channel after channel) into
// interleaved ones (frame after frame).
func Unplanarize(channels audio.Channel, sampleSize uint, output, input []byte) error {
	frames, err := checkLayout(channels, sampleSize, output, input)
	if err != nil {
		return err
	}
	transpose(int(channels), frames, int(sampleSize), output, input)
	return nil
}

func checkLayout(channels audio.Channel, sampleSize uint, output, input []byte) (int, error) {
	frameSize := int(channels) * int(sampleSize)
	if frameSize == 0 {
		return 0, fmt.Errorf("channels and sample size must be positive: %d*%d", channels, sampleSize)
	}
	if len(input)%frameSize != 0 {
		return 0, fmt.Errorf("expected a message length that is a multiple of %d, but received %d", frameSize, len(input))
	}
	if len(input) != len(output) {
		return 0, fmt.Errorf("the lengths of input and output are not equal: %d != %d", len(input), len(output))
	}
	return len(input) / frameSize, nil
}

// transpose treats input as a rows x cols matrix of cells sized cellSize
// and writes its transposition into output.
func transpose(rows, cols, cellSize int, output, input []byte) {
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			src := (row*cols + col) * cellSize
			dst := (col*rows + row) * cellSize
			copy(output[dst:dst+cellSize], input[src:src+cellSize])
		}
	}
}

// Interleave encodes frames [from, to) of pcm into output as interleaved
// samples of the given format. scratch must be at least as long as output;
// it holds the planar intermediate.
func Interleave(
	pcm *audio.PCM,
	from, to int,
	format audio.PCMFormat,
	scratch, output []byte,
) (int, error) {
	channels := pcm.Channels()
	sampleSize := format.Size()
	if to < from {
		return 0, fmt.Errorf("invalid frame range [%d, %d)", from, to)
	}
	frames := to - from
	size := frames * int(channels) * int(sampleSize)
	if len(output) < size || len(scratch) < size {
		return 0, fmt.Errorf("the provided buffers are too short: %d/%d < %d", len(output), len(scratch), size)
	}
	if size == 0 {
		return 0, nil
	}

	planarBuf := scratch[:size]
	idx := 0
	for ch := audio.Channel(0); ch < channels; ch++ {
		for frame := from; frame < to; frame++ {
			format.PutFloat64(planarBuf[idx:], float64(pcm.Sample(ch, frame)))
			idx += int(sampleSize)
		}
	}

	if err := Unplanarize(channels, sampleSize, output[:size], planarBuf); err != nil {
		return 0, fmt.Errorf("unable to unplanarize: %w", err)
	}
	return size, nil
}

// Deinterleave decodes interleaved samples of the given format into a
// slice per channel.
func Deinterleave(
	channels audio.Channel,
	format audio.PCMFormat,
	input []byte,
) ([][]float32, error) {
	sampleSize := format.Size()
	if sampleSize == 0 {
		return nil, fmt.Errorf("unsupported PCM format %v", format)
	}
	frameSize := int(channels) * int(sampleSize)
	if frameSize == 0 {
		return nil, fmt.Errorf("channels must be positive")
	}
	input = input[:len(input)-len(input)%frameSize]

	planarBuf := make([]byte, len(input))
	if err := Planarize(channels, sampleSize, planarBuf, input); err != nil {
		return nil, fmt.Errorf("unable to planarize: %w", err)
	}

	frames := len(input) / frameSize
	result := make([][]float32, channels)
	for ch := range result {
		samples := make([]float32, frames)
		offset := ch * frames * int(sampleSize)
		for frame := range samples {
			samples[frame] = float32(format.Float64(planarBuf[offset+frame*int(sampleSize):]))
		}
		result[ch] = samples
	}
	return result, nil
}
