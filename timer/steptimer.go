// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package timer

import "time"

// DefaultMaxDelta is the default clamp applied to the elapsed time of a
// single Tick. A debugger pause or long platform stall otherwise shows
// up as one enormous simulation step.
const DefaultMaxDelta = 100 * time.Millisecond

// DefaultTargetStep is the default fixed-step interval (60 Hz).
const DefaultTargetStep = time.Second / 60

// Option configures a StepTimer during creation.
type Option func(*StepTimer)

// WithClock sets the time source used by the timer.
// The default is time.Now; tests inject a fake clock.
func WithClock(now func() time.Time) Option {
	return func(t *StepTimer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithFixedStep enables fixed-step mode with the given target step.
// A non-positive step leaves the timer in variable-step mode.
func WithFixedStep(step time.Duration) Option {
	return func(t *StepTimer) {
		if step > 0 {
			t.fixed = true
			t.target = step
		}
	}
}

// WithMaxDelta sets the clamp applied to the elapsed time of a single
// Tick. A non-positive value is ignored.
func WithMaxDelta(d time.Duration) Option {
	return func(t *StepTimer) {
		if d > 0 {
			t.maxDelta = d
		}
	}
}

// StepTimer tracks elapsed and total simulation time and invokes an
// update callback once (variable step) or N times (fixed step) per Tick.
//
// StepTimer is not safe for concurrent use; it belongs to the render
// loop goroutine exclusively.
type StepTimer struct {
	now      func() time.Time
	last     time.Time
	started  bool
	total    time.Duration
	delta    time.Duration
	frames   uint64
	fixed    bool
	target   time.Duration
	leftover time.Duration
	maxDelta time.Duration
}

// New creates a StepTimer in variable-step mode with the default clamp.
func New(opts ...Option) *StepTimer {
	t := &StepTimer{
		now:      time.Now,
		target:   DefaultTargetStep,
		maxDelta: DefaultMaxDelta,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tick advances the timer and invokes update with the simulation delta.
//
// In variable-step mode update runs exactly once per call. In fixed-step
// mode update runs once per full target step accumulated, which may be
// zero times (not enough time elapsed) or many times (severe lag).
// Tick never blocks.
func (t *StepTimer) Tick(update func(delta time.Duration)) {
	now := t.now()
	if !t.started {
		t.last = now
		t.started = true
	}
	elapsed := now.Sub(t.last)
	t.last = now

	if elapsed > t.maxDelta {
		elapsed = t.maxDelta
	}
	if elapsed < 0 {
		elapsed = 0
	}

	if t.fixed {
		t.leftover += elapsed
		for t.leftover >= t.target {
			t.leftover -= t.target
			t.delta = t.target
			t.total += t.target
			t.frames++
			if update != nil {
				update(t.target)
			}
		}
		return
	}

	t.delta = elapsed
	t.total += elapsed
	t.frames++
	if update != nil {
		update(elapsed)
	}
}

// ResetElapsed discards wall-clock time accumulated since the last Tick.
// Call it after an intentional pause (for example on resume from
// suspension) so the pause does not appear as elapsed simulation time.
// Leftover fixed-step time is cleared as well.
func (t *StepTimer) ResetElapsed() {
	t.last = t.now()
	t.started = true
	t.leftover = 0
	t.delta = 0
}

// Delta returns the simulation time passed to the most recent update.
func (t *StepTimer) Delta() time.Duration { return t.delta }

// Total returns the total simulation time advanced so far.
func (t *StepTimer) Total() time.Duration { return t.total }

// FrameCount returns the number of update invocations so far.
// It is zero until the first update runs, which the host uses to skip
// rendering on the tick that only establishes the timing baseline.
func (t *StepTimer) FrameCount() uint64 { return t.frames }

// IsFixedStep reports whether the timer is in fixed-step mode.
func (t *StepTimer) IsFixedStep() bool { return t.fixed }

// TargetStep returns the fixed-step interval.
func (t *StepTimer) TargetStep() time.Duration { return t.target }

// Leftover returns the accumulated time not yet consumed by a full
// fixed step. Always less than TargetStep after a Tick.
func (t *StepTimer) Leftover() time.Duration { return t.leftover }
