package mutation

import (
	"time"

	"k8s.io/utils/clock"
)

const (
	// DefaultMaxWindow is how long conflicts may persist, measured from the first one,
	// before an attempt gives up with a ConflictTimeoutError.
	DefaultMaxWindow = 5 * time.Second

	// DefaultRetryDelay is the fixed wait between a conflict and the refetch that follows it.
	DefaultRetryDelay = 200 * time.Millisecond
)

// ConflictWindow tracks the instant of the first conflict in a retry sequence.
// The zero value is not usable; create one with NewConflictWindow.
type ConflictWindow struct {
	clock   clock.PassiveClock
	start   time.Time
	started bool
}

// NewConflictWindow creates an unstarted window reading time from c.
// A nil clock falls back to the real clock.
func NewConflictWindow(c clock.PassiveClock) *ConflictWindow {
	if c == nil {
		c = clock.RealClock{}
	}
	return &ConflictWindow{clock: c}
}

// Start records the current instant unless the window is already running.
func (w *ConflictWindow) Start() {
	if w.started {
		return
	}
	w.start = w.clock.Now()
	w.started = true
}

// Started reports whether a conflict has been recorded since the last Reset.
func (w *ConflictWindow) Started() bool {
	return w.started
}

// Elapsed returns the time since Start, or zero for an unstarted window.
func (w *ConflictWindow) Elapsed() time.Duration {
	if !w.started {
		return 0
	}
	return w.clock.Since(w.start)
}

// Reset clears the start marker.
func (w *ConflictWindow) Reset() {
	w.start = time.Time{}
	w.started = false
}
