package astirobotgo

import (
	"strings"

	"github.com/asticode/go-astilog"
	"github.com/go-vgo/robotgo"
	"github.com/pkg/errors"
)

// Keys
const (
	keyAlt        = "alt"
	keyCmd        = "cmd"
	keyCtrl       = "ctrl"
	keyDown       = "down"
	keyEnter      = "enter"
	keyF4         = "f4"
	keyMinus      = "-"
	keyMute       = "audio_mute"
	keyPlus       = "="
	keyTab        = "tab"
	keyUp         = "up"
	keyVolumeDown = "audio_vol_down"
	keyVolumeUp   = "audio_vol_up"
)

// Keyboarder represents an object capable of interacting with a keyboard
type Keyboarder interface {
	Press(keys ...string) error
}

type keyboarder struct{}

// NewKeyboarder creates a new keyboarder
func NewKeyboarder() Keyboarder {
	return keyboarder{}
}

// Press presses keys simultaneously, the last key being the one tapped
func (k keyboarder) Press(keys ...string) (err error) {
	// No keys
	if len(keys) == 0 {
		return
	}

	// Split key and modifiers
	tap := keys[len(keys)-1]
	var ms []interface{}
	for _, m := range keys[:len(keys)-1] {
		ms = append(ms, m)
	}

	// Tap
	astilog.Debugf("astirobotgo: pressing %s", strings.Join(keys, "+"))
	if err = robotgo.KeyTap(tap, ms...); err != nil {
		err = errors.Wrapf(err, "astirobotgo: pressing %s failed", strings.Join(keys, "+"))
		return
	}
	return
}
