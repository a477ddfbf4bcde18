// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package resources manages the graphics device handle and the
// per-display resource sets of an xrhost session.
//
// The Manager owns one DisplaySet per attached display (render-target
// view of the platform back buffer plus an owned depth buffer) and
// reconciles them against each frame's prediction on the render
// goroutine, while displays are attached and detached concurrently from
// platform notification goroutines. All access to the collection
// serializes through a single lock.
//
// Key principle, shared with the rest of the GoGPU ecosystem: this
// package RECEIVES the GPU device from the host application, it does
// NOT create one. See [DeviceHandle].
package resources
