// Package env holds the explicit runtime environment shared by the cache
// store and the sync engine: the clock (with an optional simulated "current
// date" used by dev tooling) and the force-offline switch that short-circuits
// every network attempt. Passing it around keeps these knobs out of package
// globals and makes them trivial to set in tests.
package env

import (
	"sync"
	"time"
)

// Clock supplies the current time. The production implementation defers to
// time.Now; tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Env is the injected environment object. The zero value is not usable;
// construct with New.
type Env struct {
	mu           sync.RWMutex
	clock        Clock
	mockDate     time.Time
	hasMockDate  bool
	forceOffline bool
}

// New returns an Env backed by the system clock.
func New() *Env {
	return &Env{clock: systemClock{}}
}

// NewWithClock returns an Env backed by the given clock.
func NewWithClock(c Clock) *Env {
	return &Env{clock: c}
}

// Now returns the simulated date when one is set, otherwise the clock time.
func (e *Env) Now() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.hasMockDate {
		return e.mockDate
	}
	return e.clock.Now()
}

// SetMockDate activates the simulated current date.
func (e *Env) SetMockDate(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mockDate = t
	e.hasMockDate = true
}

// ClearMockDate deactivates the simulated date.
func (e *Env) ClearMockDate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mockDate = time.Time{}
	e.hasMockDate = false
}

// MockDateActive reports whether a simulated date is set.
func (e *Env) MockDateActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasMockDate
}

// ForceOffline reports whether the simulate-offline switch is on.
func (e *Env) ForceOffline() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.forceOffline
}

// SetForceOffline flips the simulate-offline switch.
func (e *Env) SetForceOffline(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forceOffline = v
}
