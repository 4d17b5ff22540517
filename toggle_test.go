package astigesture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	tg := newToggle(false)
	assert.False(t, tg.isOn())

	// Wait is cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, tg.wait(ctx))

	// Wait is released
	done := make(chan error)
	go func() { done <- tg.wait(context.Background()) }()
	tg.set(true)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait wasn't released")
	}
	assert.True(t, tg.isOn())

	// Switching on twice doesn't panic
	tg.set(true)
	assert.NoError(t, tg.wait(context.Background()))

	// Switch off
	tg.set(false)
	tg.set(false)
	assert.False(t, tg.isOn())
}
