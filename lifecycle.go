package xrhost

import (
	"time"

	"github.com/gogpu/xrhost/resources"
)

// SuspendBudget is the wall-clock budget the platform grants a
// suspending process before terminating it. The host cannot extend it;
// persistence work must fit inside it. The host logs a warning when
// suspend work overruns the budget.
const SuspendBudget = 5 * time.Second

// LifecycleEvents is the set of platform lifecycle notifications the
// host consumes. *Host implements it; surfaces deliver notifications
// through it from any goroutine.
//
// Every handler either performs O(1) state mutation synchronously or
// hands off to a background goroutine and returns immediately, so the
// platform's notification dispatch is never blocked.
type LifecycleEvents interface {
	// VisibilityChanged reports the window becoming visible or hidden.
	VisibilityChanged(visible bool)

	// WindowClosed reports the window closing. Terminal and idempotent.
	WindowClosed()

	// Activated reports application activation.
	Activated()

	// Suspending starts suspend processing. The deferral must be
	// completed within the platform's suspend budget.
	Suspending(d *Deferral)

	// Resuming restores application state after a suspend.
	Resuming()

	// DisplayAdded attaches a display. The display joins frame
	// predictions only once the deferral completes.
	DisplayAdded(id resources.DisplayID, spec resources.DisplaySpec, d *Deferral)

	// DisplayRemoved detaches a display. All back-buffer references are
	// released before the deferral completes.
	DisplayRemoved(id resources.DisplayID, d *Deferral)

	// DeviceLost reports the graphics device becoming unusable.
	DeviceLost()

	// DeviceRestored reports the graphics device being recreated.
	DeviceRestored()
}

// Ensure Host implements LifecycleEvents.
var _ LifecycleEvents = (*Host)(nil)

// VisibilityChanged updates the run state's visible flag. No other side
// effect; the run loop observes the flag on its next iteration.
func (h *Host) VisibilityChanged(visible bool) {
	h.visible.Store(visible)
	Logger().Debug("visibility changed", "visible", visible)
	h.signal()
}

// WindowClosed marks the run state closed. Terminal: the flag never
// reverts, and the run loop exits within one notification-drain cycle.
func (h *Host) WindowClosed() {
	h.closed.Store(true)
	Logger().Info("window closed")
	h.signal()
}

// Activated triggers platform window activation via the surface's
// Activator upgrade so the run loop can start receiving frames.
func (h *Host) Activated() {
	h.mu.Lock()
	s := h.surface
	h.mu.Unlock()
	if a, ok := s.(Activator); ok {
		a.Activate()
	}
	h.signal()
}

// Suspending quiesces the device and persists application state off the
// notification goroutine. The deferral is completed once both are done,
// or immediately after a persistence failure: an error must never leave
// the platform waiting past its budget.
func (h *Host) Suspending(d *Deferral) {
	go func() {
		start := time.Now()
		defer d.Complete()

		if h.resources != nil {
			h.resources.Trim()
		}
		if err := h.scene.SaveState(); err != nil {
			Logger().Warn("state persistence failed during suspend", "error", err)
		}

		if elapsed := time.Since(start); elapsed > SuspendBudget {
			Logger().Warn("suspend work exceeded platform budget",
				"elapsed", elapsed,
				"budget", SuspendBudget)
		} else {
			Logger().Info("suspended", "elapsed", elapsed)
		}
	}()
}

// Resuming restores application state off the notification goroutine.
// No deadline applies.
func (h *Host) Resuming() {
	go func() {
		if err := h.scene.LoadState(); err != nil {
			Logger().Warn("state restoration failed during resume", "error", err)
		}
	}()
	h.signal()
}

// DisplayAdded builds the display's resources off the notification
// goroutine: the scene's content-allocation hook runs first (it may
// span many frames while assets load), then the resource set is
// attached, then the deferral completes. Until then the platform keeps
// the display out of every frame prediction.
func (h *Host) DisplayAdded(id resources.DisplayID, spec resources.DisplaySpec, d *Deferral) {
	go func() {
		defer d.Complete()

		h.scene.OnDisplayAdded(id)
		if h.resources == nil {
			Logger().Warn("display added before host initialization", "display", uint32(id))
			return
		}
		if err := h.resources.AddDisplay(id, spec); err != nil {
			Logger().Warn("display attach failed", "display", uint32(id), "error", err)
		}
	}()
}

// DisplayRemoved releases the display's resources synchronously on the
// notification goroutine: the platform reclaims the back buffer
// immediately after the deferral completes, so no reference may outlive
// this call. The scene's content-deallocation hook is best-effort and
// runs in the background.
func (h *Host) DisplayRemoved(id resources.DisplayID, d *Deferral) {
	go h.scene.OnDisplayRemoved(id)

	if h.resources != nil {
		if err := h.resources.RemoveDisplay(id); err != nil {
			Logger().Warn("display detach failed", "display", uint32(id), "error", err)
		}
	}
	d.Complete()
}

// DeviceLost forwards the loss to the resource manager, which discards
// all display resources and notifies registered observers.
func (h *Host) DeviceLost() {
	if h.resources != nil {
		h.resources.NotifyDeviceLost()
	}
	h.signal()
}

// DeviceRestored forwards the restoration to the resource manager;
// display resources are rebuilt lazily on the next frame.
func (h *Host) DeviceRestored() {
	if h.resources != nil {
		h.resources.NotifyDeviceRestored()
	}
	h.signal()
}
