// Package xrhost provides the host loop and device-resource lifecycle
// manager for immersive (head-mounted) rendering applications built on
// the GoGPU ecosystem.
//
// # Overview
//
// xrhost owns the per-frame cadence of an immersive application: poll
// input, advance simulation time, render, present. It coordinates
// per-display graphics resources as displays are attached and detached
// at runtime, and sequences cross-cutting lifecycle events (suspend,
// resume, device loss, window visibility) so that in-flight rendering
// state is never corrupted.
//
// The actual scene content is supplied by the application through the
// [Scene] capability set; xrhost only orchestrates.
//
// # Quick Start
//
//	import "github.com/gogpu/xrhost"
//
//	host := xrhost.New(myScene)
//	if err := host.Initialize(provider, allocator); err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Dispose()
//
//	if err := host.SetSurface(mySurface); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Blocks until the window is closed.
//	if err := host.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The module is organized into:
//   - Root package: Host run loop, lifecycle coordination, Scene and
//     Surface contracts, Deferral handshake tokens
//   - timer/: fixed/variable step frame timer
//   - frame/: per-iteration Frame and pose prediction types
//   - resources/: device resource manager and per-display resource sets
//   - backend/wgpu/: GPU device provider backed by gogpu/wgpu
//
// # Threading Model
//
// One dedicated goroutine runs [Host.Run]. Platform lifecycle
// notifications arrive on other goroutines and either perform O(1)
// state mutation or hand off to a background goroutine; the render
// loop and background work coordinate only through the resource
// collection lock and [Deferral] tokens.
package xrhost

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
