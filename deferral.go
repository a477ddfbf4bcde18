package xrhost

import (
	"sync"
	"sync/atomic"
)

// Deferral is the completion handshake for an asynchronous lifecycle
// operation (suspend, display add, display remove). The platform hands
// one to the host with the notification; holding it signals "busy" to
// the platform, and Complete signals "done", gating when resources are
// considered usable or reclaimable.
//
// Complete must be called exactly once per operation; extra calls are
// ignored. A nil Deferral is safe to complete, which keeps tests and
// direct callers simple.
type Deferral struct {
	once     sync.Once
	complete func()
	done     atomic.Bool
}

// NewDeferral creates a Deferral that invokes complete when the
// operation finishes. complete may be nil.
func NewDeferral(complete func()) *Deferral {
	return &Deferral{complete: complete}
}

// Complete signals that the deferred operation has finished.
// Safe to call multiple times and on a nil Deferral; only the first
// call on a non-nil Deferral has effect.
func (d *Deferral) Complete() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.done.Store(true)
		if d.complete != nil {
			d.complete()
		}
	})
}

// Completed reports whether Complete has been called.
func (d *Deferral) Completed() bool {
	if d == nil {
		return true
	}
	return d.done.Load()
}
