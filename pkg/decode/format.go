package decode

import (
	"bytes"
)

type Format uint

const (
	FormatUnknown = Format(iota)
	FormatWAV
	FormatMP3
	FormatFLAC
	FormatVorbis
	EndOfFormat
)

func (f Format) String() string {
	switch f {
	case FormatUnknown:
		return "unknown"
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatFLAC:
		return "flac"
	case FormatVorbis:
		return "vorbis"
	}
	return "unknown_format"
}

// Sniff detects the container from the leading bytes of data.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatVorbis
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}
