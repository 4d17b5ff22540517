package astigesture

import (
	"context"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Feedback messages
const (
	GoodbyeMessage  = "Goodbye! System shutting down."
	GreetingMessage = "Hello! Gesture and voice system is ready."
)

// FeedbackActions returns the actions answering the user out loud. Messages are only logged when
// s is nil.
func FeedbackActions(s Speaker) Actions {
	return Actions{
		ActionGoodbye:  say(s, GoodbyeMessage),
		ActionGreeting: say(s, GreetingMessage),
	}
}

func say(s Speaker, msg string) ActionFunc {
	return func(context.Context) (err error) {
		// No speaker
		if s == nil {
			astilog.Info(msg)
			return
		}

		// Say
		if err = s.Say(msg); err != nil {
			err = errors.Wrapf(err, "astigesture: saying %s failed", msg)
			return
		}
		return
	}
}
