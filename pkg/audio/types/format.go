package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

type SampleRate uint32

func (r SampleRate) FramesForDuration(d time.Duration) uint64 {
	return uint64(d) * uint64(r) / uint64(time.Second)
}

type Channel uint32

type PCMFormat uint

const (
	PCMFormatUndefined = PCMFormat(iota)
	PCMFormatU8
	PCMFormatS16LE
	PCMFormatS24LE
	PCMFormatS32LE
	PCMFormatFloat32LE
	PCMFormatFloat64LE
	EndOfPCMFormat
)

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatUndefined:
		return "undefined"
	case PCMFormatU8:
		return "u8"
	case PCMFormatS16LE:
		return "s16le"
	case PCMFormatS24LE:
		return "s24le"
	case PCMFormatS32LE:
		return "s32le"
	case PCMFormatFloat32LE:
		return "f32le"
	case PCMFormatFloat64LE:
		return "f64le"
	}
	return fmt.Sprintf("unknown_format_%d", uint(f))
}

// Size returns the amount of bytes a single sample of a single channel takes.
func (f PCMFormat) Size() uint {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE:
		return 2
	case PCMFormatS24LE:
		return 3
	case PCMFormatS32LE, PCMFormatFloat32LE:
		return 4
	case PCMFormatFloat64LE:
		return 8
	}
	return 0
}

// Float64 decodes one sample from the beginning of p into [-1, 1].
func (f PCMFormat) Float64(p []byte) float64 {
	switch f {
	case PCMFormatU8:
		return (float64(p[0]) - 128) / 128
	case PCMFormatS16LE:
		return float64(int16(binary.LittleEndian.Uint16(p))) / 32768
	case PCMFormatS24LE:
		v := int32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16)
		if v&0x800000 != 0 {
			v |= -16777216
		}
		return float64(v) / 8388608
	case PCMFormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648
	case PCMFormatFloat32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	case PCMFormatFloat64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(p))
	}
	panic(fmt.Sprintf("unknown format: %v", f))
}

// PutFloat64 encodes v into the beginning of p, saturating integer formats.
func (f PCMFormat) PutFloat64(p []byte, v float64) {
	switch f {
	case PCMFormatU8:
		p[0] = byte(saturate(math.Round(v*128+128), 0, 255))
	case PCMFormatS16LE:
		binary.LittleEndian.PutUint16(p, uint16(int16(saturate(math.Round(v*32768), -32768, 32767))))
	case PCMFormatS24LE:
		s := int32(saturate(math.Round(v*8388608), -8388608, 8388607))
		p[0] = byte(s)
		p[1] = byte(s >> 8)
		p[2] = byte(s >> 16)
	case PCMFormatS32LE:
		binary.LittleEndian.PutUint32(p, uint32(int32(saturate(math.Round(v*2147483648), -2147483648, 2147483647))))
	case PCMFormatFloat32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
	case PCMFormatFloat64LE:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

func saturate(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
