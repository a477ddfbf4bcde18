package xrhost

import (
	"sync"
	"testing"
)

func TestDeferralCompletesOnce(t *testing.T) {
	calls := 0
	d := NewDeferral(func() { calls++ })

	if d.Completed() {
		t.Error("Completed() = true before Complete")
	}

	d.Complete()
	d.Complete()
	d.Complete()

	if calls != 1 {
		t.Errorf("completion callback calls = %d, want 1", calls)
	}
	if !d.Completed() {
		t.Error("Completed() = false after Complete")
	}
}

func TestDeferralConcurrentComplete(t *testing.T) {
	calls := 0
	d := NewDeferral(func() { calls++ })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Complete()
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("completion callback calls = %d, want 1", calls)
	}
}

func TestDeferralNil(t *testing.T) {
	var d *Deferral

	// Must not panic.
	d.Complete()
	if !d.Completed() {
		t.Error("nil Deferral Completed() = false, want true")
	}
}

func TestDeferralNilCallback(t *testing.T) {
	d := NewDeferral(nil)
	d.Complete()
	if !d.Completed() {
		t.Error("Completed() = false after Complete with nil callback")
	}
}
