package xrhost

import (
	"time"

	"github.com/gogpu/xrhost/timer"
)

// Option configures a Host during creation.
// Use functional options to customize Host behavior.
//
// Example:
//
//	// Default variable-step timing
//	host := xrhost.New(scene)
//
//	// Fixed 60 Hz simulation steps
//	host := xrhost.New(scene, xrhost.WithFixedStep(time.Second/60))
type Option func(*hostOptions)

// hostOptions holds optional configuration for Host creation.
type hostOptions struct {
	timer     *timer.StepTimer
	timerOpts []timer.Option
}

// defaultOptions returns the default host options.
func defaultOptions() hostOptions {
	return hostOptions{}
}

// WithTimer sets a custom frame timer for the Host.
// Use this for dependency injection, e.g. a timer with a fake clock in
// tests.
func WithTimer(t *timer.StepTimer) Option {
	return func(o *hostOptions) {
		o.timer = t
	}
}

// WithFixedStep puts the Host's frame timer in fixed-step mode with the
// given target step. Ignored when WithTimer supplies a timer.
func WithFixedStep(step time.Duration) Option {
	return func(o *hostOptions) {
		o.timerOpts = append(o.timerOpts, timer.WithFixedStep(step))
	}
}

// WithMaxDelta sets the clamp on a single tick's elapsed time.
// Ignored when WithTimer supplies a timer.
func WithMaxDelta(d time.Duration) Option {
	return func(o *hostOptions) {
		o.timerOpts = append(o.timerOpts, timer.WithMaxDelta(d))
	}
}
