// Package transcode turns encoded media blobs into the text form accepted
// by the analysis service.
package transcode

import (
	"encoding/base64"
	"strings"
)

const base64Marker = ";base64,"

// Base64 returns the standard base-64 text of blob without any data-URL
// prefix.
func Base64(blob []byte) string {
	return StripPrefix(base64.StdEncoding.EncodeToString(blob))
}

// DataURL returns blob as a "data:<mime>;base64,<text>" URL.
func DataURL(mime string, blob []byte) string {
	return "data:" + mime + base64Marker + base64.StdEncoding.EncodeToString(blob)
}

// StripPrefix removes a leading "data:...;base64," container prefix, if any.
func StripPrefix(text string) string {
	if !strings.HasPrefix(text, "data:") {
		return text
	}
	idx := strings.Index(text, base64Marker)
	if idx < 0 {
		return text
	}
	return text[idx+len(base64Marker):]
}

// Decode is the inverse of Base64; a data-URL prefix is accepted.
func Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(StripPrefix(text))
}
