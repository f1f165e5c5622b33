// Package indicator models the two-state status lamp. The state is set
// once at boot from the durable sink's init result and deliberately never
// re-evaluated: the lamp answers "was the card usable at boot", not "is it
// usable now".
package indicator

import "sync"

// Indicator is a two-state visual indicator.
type Indicator interface {
	Set(healthy bool)
}

// Func adapts a function to the Indicator interface.
type Func func(healthy bool)

// Set calls f.
func (f Func) Set(healthy bool) { f(healthy) }

// Latch wraps an Indicator and enforces the set-once discipline: the first
// Set wins and later calls are ignored. Force bypasses the latch for the
// terminal boot failure, which overrides whatever was shown.
type Latch struct {
	mu      sync.Mutex
	target  Indicator
	set     bool
	healthy bool
}

// NewLatch creates a Latch forwarding to target. A nil target latches the
// state without displaying it.
func NewLatch(target Indicator) *Latch {
	return &Latch{target: target}
}

// Set forwards the first state to the target; subsequent calls are ignored.
func (l *Latch) Set(healthy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set {
		return
	}
	l.set = true
	l.healthy = healthy
	if l.target != nil {
		l.target.Set(healthy)
	}
}

// Force overrides the latched state unconditionally.
func (l *Latch) Force(healthy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.set = true
	l.healthy = healthy
	if l.target != nil {
		l.target.Set(healthy)
	}
}

// State returns the latched state and whether it has been set.
func (l *Latch) State() (healthy, set bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.healthy, l.set
}
