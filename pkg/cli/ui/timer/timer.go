// Package timer provides stage-aware wall-clock timing for CLI commands.
//
// A Timer tracks the total elapsed time since Start() and the elapsed time of
// the current stage. Commands call NewStage() at each stage boundary so
// success messages can report both "current" and "total" durations.
package timer

import (
	"sync"
	"time"
)

// Timer tracks total and per-stage elapsed time for a command invocation.
type Timer interface {
	// Start begins timing. Calling Start again resets the timer.
	Start()
	// NewStage marks the beginning of a new stage.
	NewStage()
	// GetTiming returns the total elapsed time and the current stage's elapsed time.
	GetTiming() (total time.Duration, stage time.Duration)
	// Stop freezes the timer; subsequent GetTiming calls return the frozen values.
	Stop()
}

// realTimer is the default Timer implementation backed by the system clock.
type realTimer struct {
	mu         sync.Mutex
	startAt    time.Time
	stageAt    time.Time
	frozen     bool
	frozenAt   time.Time
	hasStarted bool
}

var _ Timer = (*realTimer)(nil)

// New constructs a Timer backed by the system clock.
func New() Timer {
	return &realTimer{}
}

// Start begins timing. Calling Start again resets both total and stage clocks.
func (t *realTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.startAt = now
	t.stageAt = now
	t.hasStarted = true
	t.frozen = false
}

// NewStage marks the beginning of a new stage without resetting the total clock.
func (t *realTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasStarted || t.frozen {
		return
	}

	t.stageAt = time.Now()
}

// GetTiming returns the total elapsed time and the current stage's elapsed time.
// Before Start both durations are zero; after Stop both are frozen.
func (t *realTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasStarted {
		return 0, 0
	}

	now := time.Now()
	if t.frozen {
		now = t.frozenAt
	}

	return now.Sub(t.startAt), now.Sub(t.stageAt)
}

// Stop freezes the timer at the current instant.
func (t *realTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasStarted || t.frozen {
		return
	}

	t.frozen = true
	t.frozenAt = time.Now()
}
