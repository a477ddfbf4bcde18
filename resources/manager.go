// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resources

import (
	"errors"
	"sync"

	"golang.org/x/image/math/f64"
)

// Errors.
var (
	// ErrNilDeviceHandle is returned when creating a Manager without a
	// device handle.
	ErrNilDeviceHandle = errors.New("resources: nil device handle")

	// ErrNilAllocator is returned when a resource build requires a
	// texture allocator and none was provided.
	ErrNilAllocator = errors.New("resources: nil texture allocator")

	// ErrInvalidDisplaySpec is returned for zero-sized display specs.
	ErrInvalidDisplaySpec = errors.New("resources: invalid display spec")

	// ErrDeviceLost is returned for operations that cannot proceed
	// while the device is lost.
	ErrDeviceLost = errors.New("resources: device lost")
)

// DuplicateDisplayError indicates AddDisplay was called for an id that
// is already attached.
type DuplicateDisplayError struct {
	ID DisplayID
}

func (e *DuplicateDisplayError) Error() string {
	return "resources: display already attached: " + itoa(uint32(e.ID))
}

// UnknownDisplayError indicates an operation referenced an id that is
// not attached.
type UnknownDisplayError struct {
	ID DisplayID
}

func (e *UnknownDisplayError) Error() string {
	return "resources: display not attached: " + itoa(uint32(e.ID))
}

// itoa is a minimal uint formatter; avoids pulling fmt into the error
// hot path.
func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// FrameSource exposes the per-frame platform state the Manager needs to
// reconcile and present display resources. *frame.Frame implements it.
type FrameSource interface {
	// Displays returns the ids referenced by the frame's prediction.
	Displays() []DisplayID

	// BackBuffer returns the platform back buffer for a display this
	// frame. Back buffers are not guaranteed stable across frames.
	BackBuffer(id DisplayID) (Texture, bool)

	// ViewProjection returns the predicted camera state for a display.
	ViewProjection(id DisplayID) (view, projection f64.Mat4, ok bool)

	// Present hands the display's rendered back buffer to the platform,
	// reporting whether the display actually presented.
	Present(id DisplayID) bool
}

// Manager owns the graphics device handle and the collection of
// per-display resource sets.
//
// The collection is shared between the render goroutine
// (EnsureResources, Present) and platform notification goroutines
// (AddDisplay, RemoveDisplay); all of them serialize through a single
// mutex. Lock hold times are bounded per frame, so contention stalls
// are bounded to roughly one frame period.
type Manager struct {
	handle DeviceHandle
	alloc  TextureAllocator

	mu       sync.Mutex
	displays map[DisplayID]*DisplaySet
	lost     bool

	obsMu     sync.RWMutex
	observers []DeviceObserver
}

// NewManager creates a Manager using the given device handle and
// texture allocator. The handle must be non-nil; the allocator may be
// nil for device-less runs, in which case display attach fails until
// one is set.
func NewManager(handle DeviceHandle, alloc TextureAllocator) (*Manager, error) {
	if handle == nil {
		return nil, ErrNilDeviceHandle
	}
	return &Manager{
		handle:   handle,
		alloc:    alloc,
		displays: make(map[DisplayID]*DisplaySet),
	}, nil
}

// Handle returns the device handle the Manager was created with.
func (m *Manager) Handle() DeviceHandle { return m.handle }

// DisplayCount returns the number of currently attached displays.
func (m *Manager) DisplayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.displays)
}

// Display returns the resource set for a display, or false if the
// display is not attached. The returned set must only be inspected from
// the render goroutine within the current frame.
func (m *Manager) Display(id DisplayID) (*DisplaySet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.displays[id]
	return s, ok
}

// DeviceLost reports whether the device is currently lost.
func (m *Manager) DeviceLost() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lost
}

// AddDisplay constructs a new DisplaySet sized per spec and inserts it
// into the collection. Safe to call concurrently with EnsureResources
// and RemoveDisplay.
//
// Returns a *DuplicateDisplayError if the id is already attached.
func (m *Manager) AddDisplay(id DisplayID, spec DisplaySpec) error {
	spec = spec.withDefaults()
	if err := spec.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.displays[id]; exists {
		return &DuplicateDisplayError{ID: id}
	}

	set := &DisplaySet{id: id, spec: spec}
	if !m.lost {
		if err := set.buildDepth(m.alloc); err != nil {
			return err
		}
	}
	// Back-buffer view and validity arrive with the first
	// EnsureResources call that sees this display predicted.
	m.displays[id] = set

	logger().Info("display attached",
		"display", uint32(id),
		"width", spec.Width,
		"height", spec.Height)
	return nil
}

// RemoveDisplay releases every graphics reference held by the
// display's resource set and removes it from the collection. All
// references are gone before RemoveDisplay returns: the platform
// reclaims the back buffer immediately after the caller's completion
// handshake, so nothing may outlive this call.
//
// Returns a *UnknownDisplayError if the id is not attached.
func (m *Manager) RemoveDisplay(id DisplayID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.displays[id]
	if !ok {
		return &UnknownDisplayError{ID: id}
	}
	set.release()
	delete(m.displays, id)

	logger().Info("display detached", "display", uint32(id))
	return nil
}

// EnsureResources reconciles the resource sets against the frame's
// prediction. For each predicted display it validates that the set's
// render-target view still matches the platform back buffer, recreating
// the view when the buffer changed, and rebuilds sets invalidated by a
// device loss once the device has been restored.
//
// EnsureResources runs on the render goroutine every frame and is a
// no-op per display when nothing changed. While the device is lost it
// leaves all sets invalid and returns nil.
func (m *Manager) EnsureResources(src FrameSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lost {
		return nil
	}

	for _, id := range src.Displays() {
		set, ok := m.displays[id]
		if !ok {
			// The display's attach handshake has not completed; the
			// platform should not predict it yet. Tolerate and skip.
			logger().Debug("prediction references unattached display", "display", uint32(id))
			continue
		}

		if set.depth == nil {
			if err := set.buildDepth(m.alloc); err != nil {
				return err
			}
		}

		bb, ok := src.BackBuffer(id)
		if !ok {
			// No back buffer this frame; leave the set as-is.
			continue
		}
		if !set.valid || set.backBuffer != bb {
			if err := set.attachBackBuffer(bb); err != nil {
				return err
			}
			set.valid = true
		}

		if view, proj, ok := src.ViewProjection(id); ok {
			set.view = view
			set.projection = proj
		}
	}
	return nil
}

// Present presents the frame's rendered content for every display
// currently known, reporting whether at least one display presented.
func (m *Manager) Present(src FrameSource) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lost {
		return false
	}

	presented := false
	for id, set := range m.displays {
		if !set.valid {
			continue
		}
		if _, ok := src.BackBuffer(id); !ok {
			continue
		}
		if src.Present(id) {
			presented = true
		}
	}
	return presented
}

// Trim hints the underlying device to release unused memory, for
// example before suspend persistence. Best-effort: it never fails the
// caller.
func (m *Manager) Trim() {
	dev := m.handle.Device()
	if dev == nil {
		return
	}
	if t, ok := dev.(Trimmer); ok {
		t.Trim()
		return
	}
	// Poll drains completed work, which is as close to a memory trim
	// as the generic device interface offers.
	if p, ok := dev.(interface{ Poll(wait bool) }); ok {
		p.Poll(false)
	}
}

// RegisterObserver adds a device lifecycle observer.
func (m *Manager) RegisterObserver(o DeviceObserver) {
	if o == nil {
		return
	}
	m.obsMu.Lock()
	m.observers = append(m.observers, o)
	m.obsMu.Unlock()
}

// NotifyDeviceLost marks the device lost, discards the contents of all
// resource sets, and notifies observers. Idempotent while lost.
func (m *Manager) NotifyDeviceLost() {
	m.mu.Lock()
	if m.lost {
		m.mu.Unlock()
		return
	}
	m.lost = true
	for _, set := range m.displays {
		set.invalidate()
	}
	m.mu.Unlock()

	logger().Warn("graphics device lost")

	m.obsMu.RLock()
	obs := m.observers
	m.obsMu.RUnlock()
	for _, o := range obs {
		o.OnDeviceLost()
	}
}

// NotifyDeviceRestored recreates device-dependent singleton resources
// via the handle's Restorer upgrade, clears the lost flag, and notifies
// observers. Display-level resources are rebuilt lazily by the next
// EnsureResources call.
func (m *Manager) NotifyDeviceRestored() {
	if r, ok := m.handle.(Restorer); ok {
		if err := r.RestoreDeviceResources(); err != nil {
			logger().Warn("device restore failed; staying in lost state", "error", err)
			return
		}
	}

	m.mu.Lock()
	if !m.lost {
		m.mu.Unlock()
		return
	}
	m.lost = false
	m.mu.Unlock()

	logger().Info("graphics device restored")

	m.obsMu.RLock()
	obs := m.observers
	m.obsMu.RUnlock()
	for _, o := range obs {
		o.OnDeviceRestored()
	}
}

// Release releases every display resource set. The device itself is
// owned by the host application and is left untouched.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, set := range m.displays {
		set.release()
		delete(m.displays, id)
	}
}
