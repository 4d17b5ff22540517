package astigesture

import (
	"sync"
	"time"
)

// DefaultCooldown is the default minimum interval between two executions of the same action
const DefaultCooldown = time.Second

// CooldownGate tracks the last execution time of each action. It is shared by both producer loops.
type CooldownGate struct {
	ls map[ActionToken]time.Time
	m  sync.Mutex // Locks ls
}

// NewCooldownGate creates a new cooldown gate
func NewCooldownGate() *CooldownGate {
	return &CooldownGate{ls: make(map[ActionToken]time.Time)}
}

// TryAdmit atomically checks whether the action may execute at now and, if so, records now as its
// last execution time. A rejection doesn't mutate the state.
func (g *CooldownGate) TryAdmit(t ActionToken, now time.Time, cooldown time.Duration) bool {
	// Lock
	g.m.Lock()
	defer g.m.Unlock()

	// Cooldown is still active
	if l, ok := g.ls[t]; ok && now.Sub(l) < cooldown {
		return false
	}

	// Record
	g.ls[t] = now
	return true
}

// LastExecuted returns a copy of the last execution times
func (g *CooldownGate) LastExecuted() (ls map[ActionToken]time.Time) {
	g.m.Lock()
	defer g.m.Unlock()
	ls = make(map[ActionToken]time.Time, len(g.ls))
	for t, l := range g.ls {
		ls[t] = l
	}
	return
}
