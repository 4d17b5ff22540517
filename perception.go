package astigesture

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Perception errors
var (
	ErrListenTimeout = errors.New("astigesture: listen timeout")
	ErrNoFrame       = errors.New("astigesture: no frame")
	ErrUnrecognized  = errors.New("astigesture: unrecognized utterance")
)

// Frame represents a camera frame
type Frame interface {
	Close() error
	Encode() ([]byte, error) // JPEG
}

// FrameSource represents an object capable of reading camera frames. ReadFrame blocks for at
// most one frame period.
type FrameSource interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

// LandmarkExtractor represents an object capable of extracting hand landmarks from a frame
type LandmarkExtractor interface {
	Extract(ctx context.Context, f Frame) ([]Hand, error)
}

// Recognizer represents an object capable of listening to one utterance and returning its text.
// It returns ErrListenTimeout when no speech started within timeout and ErrUnrecognized when
// speech couldn't be understood.
type Recognizer interface {
	Recognize(ctx context.Context, timeout, phraseLimit time.Duration) (string, error)
}

// Speaker represents an object capable of saying words
type Speaker interface {
	Say(s string) error
}

// isPerceptionError checks whether err means nothing was perceived
func isPerceptionError(err error) bool {
	switch errors.Cause(err) {
	case ErrListenTimeout, ErrNoFrame, ErrUnrecognized:
		return true
	}
	return false
}
