package audio

import (
	"github.com/xaionaro-go/avcompare/pkg/audio/types"
)

type (
	SampleRate = types.SampleRate
	Channel    = types.Channel
	PCMFormat  = types.PCMFormat
	Stream     = types.Stream
	PlayStream = types.PlayStream
	PlayerPCM  = types.PlayerPCM
)

const (
	PCMFormatUndefined = types.PCMFormatUndefined
	PCMFormatU8        = types.PCMFormatU8
	PCMFormatS16LE     = types.PCMFormatS16LE
	PCMFormatS24LE     = types.PCMFormatS24LE
	PCMFormatS32LE     = types.PCMFormatS32LE
	PCMFormatFloat32LE = types.PCMFormatFloat32LE
	PCMFormatFloat64LE = types.PCMFormatFloat64LE
)
