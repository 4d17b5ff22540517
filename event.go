package astigesture

import (
	"time"
)

// Labels
const (
	LabelNone    = "none"
	LabelUnknown = "unknown"
)

// Sources
const (
	SourceGesture = "gesture"
	SourceVoice   = "voice"
)

// ActionToken is the canonical identifier of a host level action. Gestures and voice phrases share
// the same token space, so cooldowns are keyed by action and not by source.
type ActionToken string

// String implements the fmt.Stringer interface
func (t ActionToken) String() string { return string(t) }

// ActionTokenPtr returns a pointer to the token
func ActionTokenPtr(t ActionToken) *ActionToken { return &t }

// GestureEvent represents one per-frame gesture observation
type GestureEvent struct {
	Confidence float64   `json:"confidence"`
	Label      string    `json:"label"`
	Time       time.Time `json:"time"`
}

// VoiceEvent represents one recognized utterance
type VoiceEvent struct {
	Action *ActionToken `json:"action,omitempty"`
	Phrase string       `json:"phrase"`
	Time   time.Time    `json:"time"`
}
