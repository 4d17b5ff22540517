package astigesture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asticode/go-astilog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Outcome statuses
const (
	StatusExecuted = "executed"
	StatusFailed   = "failed"
	StatusIgnored  = "ignored"
	StatusRejected = "rejected"
	StatusUnmapped = "unmapped"
)

// DefaultGestures are the default gesture mappings
var DefaultGestures = map[string]ActionToken{
	"fist":      ActionCloseApplication,
	"ok":        ActionConfirm,
	"palm":      ActionStop,
	"peace":     ActionScreenshot,
	"point":     ActionMouseClick,
	"thumbs_up": ActionVolumeUp,
}

// Outcome represents the result of one dispatch
type Outcome struct {
	Action ActionToken `json:"action,omitempty"`
	Err    error       `json:"-"`
	Error  string      `json:"error,omitempty"`
	ID     string      `json:"id"`
	Input  string      `json:"input"` // Gesture label or raw phrase
	Source string      `json:"source"`
	Status string      `json:"status"`
	Time   time.Time   `json:"time"`
}

// OutcomeHandler handles outcomes. Handlers are called synchronously and must not block.
type OutcomeHandler func(o Outcome)

type dispatcherHandler struct {
	c DispatchConditions
	h OutcomeHandler
}

// DispatchConditions filters the outcomes a handler receives
type DispatchConditions struct {
	Source   *string
	Statuses map[string]bool
}

func (c DispatchConditions) match(o Outcome) bool {
	// Check source
	if c.Source != nil && *c.Source != o.Source {
		return false
	}

	// Check statuses
	if len(c.Statuses) > 0 && !c.Statuses[o.Status] {
		return false
	}
	return true
}

// DispatcherOptions represents dispatcher options
type DispatcherOptions struct {
	Cooldown  time.Duration                 // 0 means DefaultCooldown, negative disables the cooldown
	Cooldowns map[ActionToken]time.Duration // Per action overrides, 0 disables the cooldown
	Executor  Executor
	Gate      *CooldownGate
	Gestures  map[string]ActionToken
	Now       func() time.Time
}

// Dispatcher resolves gesture and voice events to actions and executes them when the cooldown
// gate admits them
type Dispatcher struct {
	g  *CooldownGate
	hs []dispatcherHandler
	m  *sync.Mutex // Locks hs
	o  DispatcherOptions
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(o DispatcherOptions) (d *Dispatcher, err error) {
	// No executor
	if o.Executor == nil {
		err = errors.New("astigesture: no executor provided")
		return
	}

	// Defaults
	if o.Cooldown == 0 {
		o.Cooldown = DefaultCooldown
	} else if o.Cooldown < 0 {
		o.Cooldown = 0
	}
	if o.Gate == nil {
		o.Gate = NewCooldownGate()
	}
	if o.Gestures == nil {
		o.Gestures = DefaultGestures
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	// Check gesture actions
	var ts []ActionToken
	for _, t := range o.Gestures {
		ts = append(ts, t)
	}
	if err = checkTokens(o.Executor, ts...); err != nil {
		err = errors.Wrap(err, "astigesture: checking gesture actions failed")
		return
	}

	// Create dispatcher
	d = &Dispatcher{
		g: o.Gate,
		m: &sync.Mutex{},
		o: o,
	}
	return
}

// CheckActions makes sure the executor knows the tokens
func (d *Dispatcher) CheckActions(ts ...ActionToken) error {
	return checkTokens(d.o.Executor, ts...)
}

// Gate returns the cooldown gate
func (d *Dispatcher) Gate() *CooldownGate { return d.g }

// On adds an outcome handler
func (d *Dispatcher) On(c DispatchConditions, h OutcomeHandler) {
	d.m.Lock()
	defer d.m.Unlock()
	d.hs = append(d.hs, dispatcherHandler{
		c: c,
		h: h,
	})
}

// DispatchGesture dispatches a gesture event
func (d *Dispatcher) DispatchGesture(ctx context.Context, e GestureEvent) (o Outcome) {
	// Create outcome
	o = d.newOutcome(SourceGesture, e.Label)

	// No gesture
	if e.Label == LabelNone || e.Label == "" {
		o.Status = StatusIgnored
		return
	}

	// Resolve
	t, ok := d.o.Gestures[e.Label]
	if !ok {
		astilog.Debugf("astigesture: no action mapped to gesture %s", e.Label)
		o.Status = StatusUnmapped
		d.notify(o)
		return
	}

	// Dispatch
	o.Action = t
	d.dispatch(ctx, &o)
	return
}

// DispatchVoice dispatches a voice event
func (d *Dispatcher) DispatchVoice(ctx context.Context, e VoiceEvent) (o Outcome) {
	// Create outcome
	o = d.newOutcome(SourceVoice, e.Phrase)

	// No action
	if e.Action == nil {
		astilog.Debugf("astigesture: no action mapped to phrase \"%s\"", e.Phrase)
		o.Status = StatusUnmapped
		d.notify(o)
		return
	}

	// Dispatch
	o.Action = *e.Action
	d.dispatch(ctx, &o)
	return
}

func (d *Dispatcher) newOutcome(source, input string) Outcome {
	return Outcome{
		ID:     uuid.New().String(),
		Input:  input,
		Source: source,
		Time:   d.o.Now(),
	}
}

func (d *Dispatcher) cooldown(t ActionToken) time.Duration {
	if c, ok := d.o.Cooldowns[t]; ok && c >= 0 {
		return c
	}
	return d.o.Cooldown
}

func (d *Dispatcher) dispatch(ctx context.Context, o *Outcome) {
	// Make sure handlers are notified
	defer func() { d.notify(*o) }()

	// Admit
	if !d.g.TryAdmit(o.Action, o.Time, d.cooldown(o.Action)) {
		o.Status = StatusRejected
		return
	}

	// Execute
	if err := d.execute(ctx, o.Action); err != nil {
		astilog.Error(errors.Wrapf(err, "astigesture: executing %s action %s failed", o.Source, o.Action))
		o.Err = err
		o.Error = err.Error()
		o.Status = StatusFailed
		return
	}
	astilog.Infof("astigesture: executed %s action %s", o.Source, o.Action)
	o.Status = StatusExecuted
}

func (d *Dispatcher) execute(ctx context.Context, t ActionToken) (err error) {
	// Make sure a panicking action doesn't take the loop down
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("astigesture: action panicked: %v", r)
		}
	}()
	return d.o.Executor.Execute(ctx, t)
}

func (d *Dispatcher) notify(o Outcome) {
	// Lock
	d.m.Lock()
	hs := make([]dispatcherHandler, len(d.hs))
	copy(hs, d.hs)
	d.m.Unlock()

	// Loop through handlers
	for _, h := range hs {
		// No match
		if !h.c.match(o) {
			continue
		}

		// Handle
		h.h(o)
	}
}
