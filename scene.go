package xrhost

import (
	"time"

	"github.com/gogpu/xrhost/frame"
	"github.com/gogpu/xrhost/resources"
)

// Scene is the capability set the application layer supplies to the
// host. Embed [SceneBase] to get no-op defaults and override only what
// the application needs.
//
// Threading: ProcessInput, Update, and Render run on the render
// goroutine. OnDisplayAdded/OnDisplayRemoved, SaveState, and LoadState
// run on background lifecycle goroutines and must not touch render
// state except through the host's synchronization.
type Scene interface {
	// ProcessInput polls input devices. Invoked once per active loop
	// iteration, before frame creation.
	ProcessInput()

	// Update advances simulation state by delta. Invoked by the frame
	// timer, once per variable-step tick or once per fixed step. It
	// must not present or swap buffers.
	Update(f *frame.Frame, delta time.Duration)

	// Render produces drawable content for the frame into the display
	// resources prepared by the resource manager. It reports whether
	// anything was rendered for at least one display; the host presents
	// only on success.
	Render(f *frame.Frame) bool

	// OnDisplayAdded allocates display-specific content (assets,
	// per-display buffers) before the display's resources are built.
	// It may take many frame periods; the display joins frame
	// predictions only after the attach handshake completes.
	OnDisplayAdded(id resources.DisplayID)

	// OnDisplayRemoved releases display-specific content. Best-effort
	// and not ordering-critical.
	OnDisplayRemoved(id resources.DisplayID)

	// SaveState persists application state during suspend. The host
	// logs a returned error and completes the suspend handshake
	// regardless.
	SaveState() error

	// LoadState restores application state during resume.
	LoadState() error
}

// Loader is implemented by scenes that load content from an entry
// point. Host.Load uses it when available.
type Loader interface {
	Load(entryPoint string) error
}

// SceneBase provides no-op implementations of every Scene method.
// Embed it and override selectively.
type SceneBase struct{}

// ProcessInput does nothing.
func (SceneBase) ProcessInput() {}

// Update does nothing.
func (SceneBase) Update(*frame.Frame, time.Duration) {}

// Render reports that nothing was rendered.
func (SceneBase) Render(*frame.Frame) bool { return false }

// OnDisplayAdded does nothing.
func (SceneBase) OnDisplayAdded(resources.DisplayID) {}

// OnDisplayRemoved does nothing.
func (SceneBase) OnDisplayRemoved(resources.DisplayID) {}

// SaveState does nothing.
func (SceneBase) SaveState() error { return nil }

// LoadState does nothing.
func (SceneBase) LoadState() error { return nil }

// Ensure SceneBase implements Scene.
var _ Scene = SceneBase{}
