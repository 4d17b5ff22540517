package astigesture

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownGate(t *testing.T) {
	g := NewCooldownGate()
	n := time.Unix(1000, 0)

	// Spaced calls are admitted
	for idx := 0; idx < 5; idx++ {
		assert.True(t, g.TryAdmit(ActionVolumeUp, n.Add(time.Duration(idx)*time.Second), time.Second))
	}

	// Calls within the cooldown are rejected and don't mutate the state
	last := n.Add(4 * time.Second)
	assert.False(t, g.TryAdmit(ActionVolumeUp, last.Add(500*time.Millisecond), time.Second))
	assert.False(t, g.TryAdmit(ActionVolumeUp, last.Add(999*time.Millisecond), time.Second))
	assert.Equal(t, map[ActionToken]time.Time{ActionVolumeUp: last}, g.LastExecuted())
	assert.True(t, g.TryAdmit(ActionVolumeUp, last.Add(time.Second), time.Second))

	// Tokens are independent
	assert.True(t, g.TryAdmit(ActionScreenshot, last, time.Second))
}

func TestCooldownGateConcurrency(t *testing.T) {
	g := NewCooldownGate()
	n := time.Now()
	var admitted int32
	var wg sync.WaitGroup
	for idx := 0; idx < 100; idx++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAdmit(ActionVolumeUp, n, time.Second) {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted)
}
