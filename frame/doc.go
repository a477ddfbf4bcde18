// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame defines the per-iteration Frame produced by a rendering
// Space: a prediction of display poses for the instant the frame will
// be presented, the platform back buffers to render into, and the
// presenter that hands rendered buffers back to the platform.
//
// A Frame is ephemeral: the host requests a fresh one every loop
// iteration and never persists it.
package frame
