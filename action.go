package astigesture

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// Action tokens
const (
	ActionAltTab           ActionToken = "alt_tab"
	ActionCloseApplication ActionToken = "close_application"
	ActionCloseBrowser     ActionToken = "close_browser"
	ActionConfirm          ActionToken = "confirm_action"
	ActionGoodbye          ActionToken = "goodbye"
	ActionGreeting         ActionToken = "greeting"
	ActionMaximizeWindow   ActionToken = "maximize_window"
	ActionMinimizeWindow   ActionToken = "minimize_window"
	ActionMouseClick       ActionToken = "mouse_click"
	ActionMute             ActionToken = "mute_audio"
	ActionOpenBrowser      ActionToken = "open_browser"
	ActionOpenCalculator   ActionToken = "open_calculator"
	ActionOpenNotepad      ActionToken = "open_notepad"
	ActionScreenshot       ActionToken = "screenshot"
	ActionScrollDown       ActionToken = "scroll_down"
	ActionScrollUp         ActionToken = "scroll_up"
	ActionStop             ActionToken = "stop_action"
	ActionUnmute           ActionToken = "unmute_audio"
	ActionVolumeDown       ActionToken = "volume_down"
	ActionVolumeUp         ActionToken = "volume_up"
	ActionZoomIn           ActionToken = "zoom_in"
	ActionZoomOut          ActionToken = "zoom_out"
)

// ErrUnknownAction is returned when no action is registered for a token
var ErrUnknownAction = errors.New("astigesture: unknown action")

// Executor represents an object capable of performing host level actions
type Executor interface {
	Execute(ctx context.Context, t ActionToken) error
}

// ActionFunc performs one host level side effect
type ActionFunc func(ctx context.Context) error

// Actions is an executor backed by a table of action funcs resolved once at startup
type Actions map[ActionToken]ActionFunc

// Execute implements the Executor interface
func (as Actions) Execute(ctx context.Context, t ActionToken) (err error) {
	// Get action
	fn, ok := as[t]
	if !ok || fn == nil {
		err = errors.Wrapf(ErrUnknownAction, "astigesture: no action for %s", t)
		return
	}

	// Execute
	return fn(ctx)
}

// Tokens returns the sorted list of registered tokens
func (as Actions) Tokens() (ts []ActionToken) {
	for t := range as {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return
}

// Merge returns a new table containing as overridden by ms
func (as Actions) Merge(ms ...Actions) (o Actions) {
	o = make(Actions, len(as))
	for t, fn := range as {
		o[t] = fn
	}
	for _, m := range ms {
		for t, fn := range m {
			o[t] = fn
		}
	}
	return
}

// tokener is implemented by executors able to list their tokens
type tokener interface {
	Tokens() []ActionToken
}

// checkTokens makes sure every token is known by the executor when it can list its tokens
func checkTokens(e Executor, ts ...ActionToken) (err error) {
	// Executor can't list its tokens
	tk, ok := e.(tokener)
	if !ok {
		return
	}

	// Index
	is := make(map[ActionToken]bool)
	for _, t := range tk.Tokens() {
		is[t] = true
	}

	// Loop through tokens
	for _, t := range ts {
		if !is[t] {
			err = errors.Wrapf(ErrUnknownAction, "astigesture: %s is not registered", t)
			return
		}
	}
	return
}
