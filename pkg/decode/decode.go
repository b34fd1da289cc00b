// Package decode is the boundary between raw media bytes and PCM buffers.
package decode

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/avcompare/pkg/audio"
)

var ErrDecodeFailure = errors.New("unable to decode the media")

type Decoder interface {
	// Decode returns the PCM of the whole data. Errors wrap ErrDecodeFailure.
	Decode(ctx context.Context, data []byte) (*audio.PCM, error)
}

// Failuref returns an error wrapping both ErrDecodeFailure and err.
func Failuref(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrDecodeFailure, fmt.Sprintf(format, args...), err)
}
