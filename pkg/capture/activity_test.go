package capture

import (
	"errors"
	"sync"
	"testing"
)

func TestActivityTrackerCounts(t *testing.T) {
	tr := NewActivityTracker()
	tr.Begin()

	for i := 0; i < 60; i++ {
		tr.RecordMovement()
	}
	for i := 0; i < 5; i++ {
		tr.RecordClick()
	}
	for i := 0; i < 10; i++ {
		tr.RecordKeypress()
	}

	sample, err := tr.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if sample.MovementCount != 60 {
		t.Errorf("movements = %d, want 60", sample.MovementCount)
	}
	if sample.ClickCount != 5 {
		t.Errorf("clicks = %d, want 5", sample.ClickCount)
	}
	if sample.KeypressCount != 10 {
		t.Errorf("keypresses = %d, want 10", sample.KeypressCount)
	}
	if sample.Elapsed <= 0 {
		t.Errorf("elapsed = %v, want > 0", sample.Elapsed)
	}
}

func TestActivityTrackerConcurrentFeeds(t *testing.T) {
	tr := NewActivityTracker()
	tr.Begin()

	// Listener callbacks fire from arbitrary goroutines; counts must
	// never be lost to unsynchronized writes.
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr.RecordMovement()
				tr.RecordKeypress()
			}
		}()
	}
	wg.Wait()

	sample, err := tr.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if want := uint64(workers * perWorker); sample.MovementCount != want {
		t.Errorf("movements = %d, want %d", sample.MovementCount, want)
	}
	if want := uint64(workers * perWorker); sample.KeypressCount != want {
		t.Errorf("keypresses = %d, want %d", sample.KeypressCount, want)
	}
}

func TestActivityTrackerStopWithoutBegin(t *testing.T) {
	tr := NewActivityTracker()
	if _, err := tr.Stop(); !errors.Is(err, ErrWindowNotOpen) {
		t.Errorf("expected ErrWindowNotOpen, got %v", err)
	}
}

func TestActivityTrackerReuseResetsCounts(t *testing.T) {
	tr := NewActivityTracker()

	tr.Begin()
	tr.RecordClick()
	if _, err := tr.Stop(); err != nil {
		t.Fatal(err)
	}

	tr.Begin()
	sample, err := tr.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if sample.ClickCount != 0 {
		t.Errorf("second window should start from zero, got %d clicks", sample.ClickCount)
	}
}
