package wav

import (
	"encoding/binary"
	"fmt"

	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/audio/planar"
)

type formatChunk struct {
	FormatTag     uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	SubFormatTag  uint16
}

func (f formatChunk) pcmFormat() (audio.PCMFormat, error) {
	tag := f.FormatTag
	if tag == formatTagExtensible {
		tag = f.SubFormatTag
	}
	switch tag {
	case formatTagPCM:
		switch f.BitsPerSample {
		case 8:
			return audio.PCMFormatU8, nil
		case 16:
			return audio.PCMFormatS16LE, nil
		case 24:
			return audio.PCMFormatS24LE, nil
		case 32:
			return audio.PCMFormatS32LE, nil
		}
	case formatTagIEEEFloat:
		switch f.BitsPerSample {
		case 32:
			return audio.PCMFormatFloat32LE, nil
		case 64:
			return audio.PCMFormatFloat64LE, nil
		}
	}
	return audio.PCMFormatUndefined, fmt.Errorf("unsupported WAVE format: tag 0x%04X, %d bits per sample", f.FormatTag, f.BitsPerSample)
}

// Decode parses a RIFF/WAVE file. Chunks other than "fmt " and "data" are
// skipped; a data chunk that claims more bytes than available is truncated.
func Decode(data []byte) (*audio.PCM, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format    *formatChunk
		pcmData   []byte
		foundData bool
	)
	for offset := 12; offset+8 <= len(data); {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4:]))
		body := data[offset+8:]
		if size < len(body) {
			body = body[:size]
		}

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, fmt.Errorf("the fmt chunk is too short: %d", len(body))
			}
			format = &formatChunk{
				FormatTag:     binary.LittleEndian.Uint16(body[0:]),
				Channels:      binary.LittleEndian.Uint16(body[2:]),
				SampleRate:    binary.LittleEndian.Uint32(body[4:]),
				BitsPerSample: binary.LittleEndian.Uint16(body[14:]),
			}
			if format.FormatTag == formatTagExtensible && len(body) >= 26 {
				format.SubFormatTag = binary.LittleEndian.Uint16(body[24:])
			}
		case "data":
			pcmData = body
			foundData = true
		}

		// chunks are padded to an even size
		offset += 8 + size + size%2
	}

	if format == nil {
		return nil, fmt.Errorf("no fmt chunk")
	}
	if !foundData {
		return nil, fmt.Errorf("no data chunk")
	}

	pcmFormat, err := format.pcmFormat()
	if err != nil {
		return nil, err
	}

	if format.Channels == 0 {
		return audio.NewPCM(audio.SampleRate(format.SampleRate)), nil
	}
	samples, err := planar.Deinterleave(audio.Channel(format.Channels), pcmFormat, pcmData)
	if err != nil {
		return nil, fmt.Errorf("unable to deinterleave the samples: %w", err)
	}
	return audio.NewPCM(audio.SampleRate(format.SampleRate), samples...), nil
}
