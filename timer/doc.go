// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package timer provides the frame timer that drives the xrhost render
// loop.
//
// StepTimer supports two advancement policies:
//   - Variable step (default): each Tick invokes the update callback
//     exactly once with the wall-clock time elapsed since the previous
//     Tick, clamped to a configurable maximum.
//   - Fixed step: elapsed time accumulates and the update callback is
//     invoked zero or more times per Tick, each with exactly the target
//     step, replaying simulation in constant-size increments.
package timer
