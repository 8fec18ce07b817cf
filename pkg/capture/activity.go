package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calmwave/panicwatch/pkg/stress"
)

// ActivityTracker accumulates input-device event counts over one window.
// Record methods are safe to call from any goroutine (listener callbacks
// fire on their own threads); each counter is atomic, so the tracker never
// reads a count while it is being written.
//
// Lifecycle: Begin opens the window, Record* feed it, Stop closes it and
// returns the immutable sample. A tracker is reusable: Begin resets all
// counters for a fresh window.
type ActivityTracker struct {
	movements  atomic.Uint64
	clicks     atomic.Uint64
	keypresses atomic.Uint64

	mu      sync.Mutex
	started time.Time
	open    bool
}

// ErrWindowNotOpen is returned by Stop when no window is in progress.
var ErrWindowNotOpen = errors.New("activity window not open")

// NewActivityTracker creates an idle tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{}
}

// Begin opens a new activity window, resetting all counters.
func (t *ActivityTracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.movements.Store(0)
	t.clicks.Store(0)
	t.keypresses.Store(0)
	t.started = time.Now()
	t.open = true
}

// RecordMovement counts one pointer movement event.
func (t *ActivityTracker) RecordMovement() { t.movements.Add(1) }

// RecordClick counts one button press event. Callers should only report
// presses, not releases.
func (t *ActivityTracker) RecordClick() { t.clicks.Add(1) }

// RecordKeypress counts one key press event.
func (t *ActivityTracker) RecordKeypress() { t.keypresses.Add(1) }

// Stop closes the window and returns the accumulated sample with its
// elapsed duration. Rates derived from the sample are fixed from this
// point on.
func (t *ActivityTracker) Stop() (stress.RawActivitySample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return stress.RawActivitySample{}, ErrWindowNotOpen
	}
	t.open = false

	return stress.RawActivitySample{
		MovementCount: t.movements.Load(),
		ClickCount:    t.clicks.Load(),
		KeypressCount: t.keypresses.Load(),
		Elapsed:       time.Since(t.started).Seconds(),
	}, nil
}
