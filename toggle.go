package astigesture

import (
	"context"
	"sync"
)

// toggle represents an on/off switch a loop can park on
type toggle struct {
	c  chan struct{} // Closed while the toggle is on
	m  sync.Mutex    // Locks c and on
	on bool
}

// newToggle creates a new toggle.
func newToggle(on bool) (t *toggle) {
	t = &toggle{c: make(chan struct{})}
	if on {
		t.switchOn()
	}
	return
}

// isOn returns whether the toggle is on.
func (t *toggle) isOn() bool {
	t.m.Lock()
	defer t.m.Unlock()
	return t.on
}

// set switches the toggle on or off.
func (t *toggle) set(on bool) {
	if on {
		t.switchOn()
	} else {
		t.switchOff()
	}
}

// switchOn switches the toggle on.
func (t *toggle) switchOn() {
	// Lock
	t.m.Lock()
	defer t.m.Unlock()

	// Toggle is already on
	if t.on {
		return
	}

	// Release waiters
	t.on = true
	close(t.c)
}

// switchOff switches the toggle off.
func (t *toggle) switchOff() {
	// Lock
	t.m.Lock()
	defer t.m.Unlock()

	// Toggle is already off
	if !t.on {
		return
	}

	// Reset channel
	t.on = false
	t.c = make(chan struct{})
}

// wait blocks until the toggle is on or the context is done.
func (t *toggle) wait(ctx context.Context) error {
	// Get channel
	t.m.Lock()
	c := t.c
	t.m.Unlock()

	// Listen to channels
	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
