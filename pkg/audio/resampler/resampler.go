package resampler

import (
	"fmt"
	"io"
	"sync"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

type Format struct {
	Channels   audio.Channel
	SampleRate audio.SampleRate
	PCMFormat  audio.PCMFormat
}

func (f Format) frameSize() int {
	return int(f.Channels) * int(f.PCMFormat.Size())
}

type precalculated struct {
	inFrameSize   int
	outFrameSize  int
	inSampleSize  int
	outSampleSize int
}

// Resampler converts an interleaved PCM stream of one Format into another.
// Rate conversion picks the nearest preceding source frame; channels are
// either copied one-to-one, averaged into mono, or a mono source is repeated
// into every output channel.
type Resampler struct {
	inReader  io.Reader
	inFormat  Format
	outFormat Format
	locker    sync.Mutex

	buffer  []byte
	pending []byte
	readErr error

	current     []float64
	srcFrameIdx int64
	outFrameIdx uint64
	precalculated
}

var _ io.Reader = (*Resampler)(nil)

func NewResampler(
	inFormat Format,
	inReader io.Reader,
	outFormat Format,
) (*Resampler, error) {
	r := &Resampler{
		inReader:  inReader,
		inFormat:  inFormat,
		outFormat: outFormat,
	}
	err := r.init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %#+v to %#+v: %w", inFormat, outFormat, err)
	}
	return r, nil
}

func (r *Resampler) init() error {
	for _, f := range []Format{r.inFormat, r.outFormat} {
		if f.PCMFormat.Size() == 0 {
			return fmt.Errorf("unsupported PCM format %v", f.PCMFormat)
		}
		if f.Channels == 0 {
			return fmt.Errorf("the amount of channels must be positive")
		}
		if f.SampleRate == 0 {
			return fmt.Errorf("the sample rate must be positive")
		}
	}

	if r.inFormat.Channels != r.outFormat.Channels &&
		r.inFormat.Channels != 1 && r.outFormat.Channels != 1 {
		return fmt.Errorf("do not know how to convert %d channels to %d", r.inFormat.Channels, r.outFormat.Channels)
	}

	r.inSampleSize = int(r.inFormat.PCMFormat.Size())
	r.outSampleSize = int(r.outFormat.PCMFormat.Size())
	r.inFrameSize = r.inFormat.frameSize()
	r.outFrameSize = r.outFormat.frameSize()
	r.current = make([]float64, r.inFormat.Channels)
	r.srcFrameIdx = -1
	r.outFrameIdx = 0
	return nil
}

func (r *Resampler) Read(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	maxOutFrames := len(p) / r.outFrameSize
	written := 0
	for written < maxOutFrames {
		wanted := int64(r.outFrameIdx * uint64(r.inFormat.SampleRate) / uint64(r.outFormat.SampleRate))
		for r.srcFrameIdx < wanted {
			if len(r.pending) < r.inFrameSize {
				if r.readErr == nil {
					r.fill(maxOutFrames - written)
				}
				if len(r.pending) < r.inFrameSize {
					if written > 0 {
						return written * r.outFrameSize, nil
					}
					return 0, r.readErr
				}
			}
			r.decodeFrame(r.pending[:r.inFrameSize])
			r.pending = r.pending[r.inFrameSize:]
			r.srcFrameIdx++
		}
		r.encodeFrame(p[written*r.outFrameSize:])
		written++
		r.outFrameIdx++
	}
	return written * r.outFrameSize, nil
}

// fill performs a single read from the source, sized to produce about
// outFrames output frames.
func (r *Resampler) fill(outFrames int) {
	inFrames := uint64(outFrames)*uint64(r.inFormat.SampleRate)/uint64(r.outFormat.SampleRate) + 1
	need := len(r.pending) + int(inFrames)*r.inFrameSize
	if cap(r.buffer) < need {
		buffer := make([]byte, need)
		copy(buffer, r.pending)
		r.buffer = buffer
	} else {
		r.buffer = r.buffer[:need]
		copy(r.buffer, r.pending)
	}
	kept := len(r.pending)

	n, err := r.inReader.Read(r.buffer[kept:])
	r.pending = r.buffer[:kept+n]
	r.readErr = err
}

func (r *Resampler) decodeFrame(frame []byte) {
	for ch := range r.current {
		r.current[ch] = r.inFormat.PCMFormat.Float64(frame[ch*r.inSampleSize:])
	}
}

func (r *Resampler) encodeFrame(out []byte) {
	inChannels := int(r.inFormat.Channels)
	outChannels := int(r.outFormat.Channels)
	switch {
	case inChannels == outChannels:
		for ch := 0; ch < outChannels; ch++ {
			r.outFormat.PCMFormat.PutFloat64(out[ch*r.outSampleSize:], r.current[ch])
		}
	case outChannels == 1:
		var sum float64
		for _, v := range r.current {
			sum += v
		}
		r.outFormat.PCMFormat.PutFloat64(out, sum/float64(inChannels))
	default:
		for ch := 0; ch < outChannels; ch++ {
			r.outFormat.PCMFormat.PutFloat64(out[ch*r.outSampleSize:], r.current[0])
		}
	}
}
