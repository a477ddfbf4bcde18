package xrhost

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/xrhost/frame"
	"github.com/gogpu/xrhost/resources"
	"github.com/gogpu/xrhost/timer"
)

// Errors.
var (
	// ErrNotInitialized is returned by Run before Initialize succeeded.
	ErrNotInitialized = errors.New("xrhost: host not initialized")

	// ErrAlreadyRunning is returned when Run is called while another
	// Run is in progress.
	ErrAlreadyRunning = errors.New("xrhost: host already running")
)

// State is the run loop state.
type State int32

const (
	// StateRunning means the loop is actively producing frames.
	StateRunning State = iota

	// StatePaused means the loop is parked: the window is hidden or no
	// rendering space exists yet. No render or present calls happen.
	StatePaused

	// StateTerminated means the window closed and the loop exited.
	// Terminal.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Surface is a drawable surface provided by the platform layer.
// Binding one to the host yields the rendering space that produces
// frames.
//
// Surfaces may additionally implement [Subscriber], [Unsubscriber],
// and [Activator]; the host uses those upgrades when present.
type Surface interface {
	CreateSpace() (frame.Space, error)
}

// Subscriber is implemented by surfaces that deliver platform lifecycle
// notifications. SetSurface subscribes the host.
type Subscriber interface {
	Subscribe(LifecycleEvents)
}

// Unsubscriber is implemented by surfaces that support detaching a
// previously subscribed listener. Uninitialize uses it.
type Unsubscriber interface {
	Unsubscribe(LifecycleEvents)
}

// Activator is implemented by surfaces that require explicit activation
// before the rendering space starts receiving frames.
type Activator interface {
	Activate()
}

// Host is the top-level render host: it owns the run loop, the frame
// timer, and the device resource manager, and coordinates lifecycle
// notifications against them.
//
// A Host is driven by exactly one goroutine calling Run; lifecycle
// notifications may arrive concurrently from any goroutine.
type Host struct {
	scene Scene
	opts  hostOptions

	resources *resources.Manager
	timer     *timer.StepTimer

	// visible and closed form the run state. Mutated only by lifecycle
	// handlers, read every loop iteration. closed never reverts.
	visible atomic.Bool
	closed  atomic.Bool

	// mu guards surface and space.
	mu      sync.Mutex
	surface Surface
	space   frame.Space

	state   atomic.Int32
	running atomic.Bool

	// wake is a one-slot signal channel: a parked loop blocks on it
	// until any notification arrives.
	wake chan struct{}
}

// New creates a Host for the given scene. A nil scene gets no-op
// behavior.
func New(scene Scene, opts ...Option) *Host {
	if scene == nil {
		scene = SceneBase{}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	h := &Host{
		scene: scene,
		opts:  o,
		wake:  make(chan struct{}, 1),
	}
	h.visible.Store(true)
	h.state.Store(int32(StatePaused))
	return h
}

// Initialize creates the device resource manager from the given device
// handle and texture allocator, and wires the scene's optional device
// observer capability.
func (h *Host) Initialize(handle resources.DeviceHandle, alloc resources.TextureAllocator) error {
	mgr, err := resources.NewManager(handle, alloc)
	if err != nil {
		return err
	}
	h.resources = mgr

	if h.opts.timer != nil {
		h.timer = h.opts.timer
	} else {
		h.timer = timer.New(h.opts.timerOpts...)
	}

	if obs, ok := h.scene.(resources.DeviceObserver); ok {
		mgr.RegisterObserver(obs)
	}

	Logger().Info("host initialized")
	return nil
}

// SetSurface binds the rendering space to a drawable surface and wires
// the host's notification subscriptions. Passing nil detaches the
// current surface, parking the loop.
func (h *Host) SetSurface(s Surface) error {
	if s == nil {
		h.mu.Lock()
		if u, ok := h.surface.(Unsubscriber); ok {
			u.Unsubscribe(h)
		}
		h.surface = nil
		h.space = nil
		h.mu.Unlock()
		h.signal()
		return nil
	}

	space, err := s.CreateSpace()
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.surface = s
	h.space = space
	h.mu.Unlock()

	if sub, ok := s.(Subscriber); ok {
		sub.Subscribe(h)
	}

	Logger().Info("surface bound")
	h.signal()
	return nil
}

// Load forwards the entry point to the scene's Loader capability.
// Scenes without one load nothing.
func (h *Host) Load(entryPoint string) error {
	if l, ok := h.scene.(Loader); ok {
		return l.Load(entryPoint)
	}
	return nil
}

// Run executes the render loop until the window closes. It blocks the
// calling goroutine, which becomes the render goroutine.
//
// While the window is hidden or no rendering space exists, the loop
// parks on the notification signal instead of spinning. Unrecoverable
// graphics failures convert to device-lost notifications; they never
// abort the loop.
func (h *Host) Run() error {
	if h.resources == nil {
		return ErrNotInitialized
	}
	if !h.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer h.running.Store(false)

	wasPaused := false
	for {
		if h.paused() && !h.closed.Load() {
			h.state.Store(int32(StatePaused))
			wasPaused = true
			<-h.wake
		} else {
			h.drainWake()
		}

		if h.closed.Load() {
			h.state.Store(int32(StateTerminated))
			Logger().Info("host terminated")
			return nil
		}

		h.mu.Lock()
		space := h.space
		h.mu.Unlock()
		if !h.visible.Load() || space == nil {
			h.state.Store(int32(StatePaused))
			wasPaused = true
			continue
		}

		if wasPaused {
			// Time spent hidden is not simulation time.
			h.timer.ResetElapsed()
			wasPaused = false
		}
		h.state.Store(int32(StateRunning))

		h.scene.ProcessInput()

		f, err := space.CreateNextFrame()
		if err != nil {
			Logger().Warn("frame creation failed", "error", err)
			h.resources.NotifyDeviceLost()
			continue
		}

		if err := h.resources.EnsureResources(f); err != nil {
			Logger().Warn("display resource reconciliation failed", "error", err)
			h.resources.NotifyDeviceLost()
			continue
		}

		h.timer.Tick(func(delta time.Duration) {
			h.scene.Update(f, delta)
		})

		// The very first tick only establishes the timing baseline;
		// render once the frame count is nonzero.
		if h.timer.FrameCount() != 0 && h.scene.Render(f) {
			h.resources.Present(f)
		}
	}
}

// paused reports whether the loop has nothing to render: hidden window
// or no rendering space.
func (h *Host) paused() bool {
	if !h.visible.Load() {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.space == nil
}

// State returns the loop state.
func (h *Host) State() State {
	return State(h.state.Load())
}

// Timer returns the frame timer. It must only be reconfigured from the
// render goroutine.
func (h *Host) Timer() *timer.StepTimer { return h.timer }

// Resources returns the device resource manager, or nil before
// Initialize.
func (h *Host) Resources() *resources.Manager { return h.resources }

// Uninitialize detaches the host from the surface's notification
// stream. The loop keeps running (parked) until the window closes;
// call Dispose to release device resources.
func (h *Host) Uninitialize() {
	h.mu.Lock()
	s := h.surface
	h.mu.Unlock()
	if u, ok := s.(Unsubscriber); ok {
		u.Unsubscribe(h)
	}
}

// Dispose releases the device resource manager's display resources.
// The device itself belongs to the host application and is untouched.
func (h *Host) Dispose() {
	if h.resources != nil {
		h.resources.Release()
	}
}

// signal wakes a parked run loop. Non-blocking: the one-slot channel
// coalesces bursts of notifications.
func (h *Host) signal() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// drainWake consumes a pending wake signal without blocking.
func (h *Host) drainWake() {
	select {
	case <-h.wake:
	default:
	}
}
