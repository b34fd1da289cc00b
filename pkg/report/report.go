// Package report is the boundary to the external service that writes a
// textual analysis of the isolated audio.
package report

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/transcode"
	"github.com/xaionaro-go/avcompare/pkg/wav"
)

var ErrAnalysisUnavailable = errors.New("the analysis is unavailable")

const MIMETypeWAV = "audio/wav"

type Request struct {
	Prompt   string
	MIMEType string

	// Audio is base-64 text without any data-URL prefix.
	Audio string
}

type Report struct {
	Text      string
	CreatedAt time.Time
}

type Analyzer interface {
	io.Closer
	Analyze(ctx context.Context, req Request) (*Report, error)
}

// NewRequest encodes pcm as a canonical WAV file for the analyzer.
func NewRequest(pcm *audio.PCM, prompt string) Request {
	return Request{
		Prompt:   prompt,
		MIMEType: MIMETypeWAV,
		Audio:    transcode.Base64(wav.Encode(pcm)),
	}
}
