// Command xrhostdemo runs a headless simulated render host session.
//
// It wires a Host to an in-process platform simulation: a surface that
// produces frame predictions on a fixed cadence, a texture allocator
// backed by plain memory, and a scripted lifecycle (display attach,
// hide/show, suspend/resume, device loss, display detach, close).
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/xrhost"
	"github.com/gogpu/xrhost/frame"
	"github.com/gogpu/xrhost/resources"
)

func main() {
	var (
		frames   = flag.Int("frames", 120, "frames to render before closing")
		interval = flag.Duration("interval", 16*time.Millisecond, "simulated frame interval")
		fixed    = flag.Bool("fixed", false, "use a fixed simulation step")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	xrhost.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	scene := &spinScene{}
	var opts []xrhost.Option
	if *fixed {
		opts = append(opts, xrhost.WithFixedStep(*interval))
	}
	host := xrhost.New(scene, opts...)

	if err := host.Initialize(simHandle{dev: &simDevice{}}, simAllocator{}); err != nil {
		log.Fatalf("initialize: %v", err)
	}

	surface := newSimSurface(*interval)
	if err := host.SetSurface(surface); err != nil {
		log.Fatalf("bind surface: %v", err)
	}

	// Script the platform side: attach a display, let the loop render,
	// exercise the lifecycle, then close.
	go surface.runScript(*frames)

	if err := host.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
	host.Uninitialize()
	host.Dispose()

	log.Printf("session complete: %d frames, %v simulated, final angle %.2f rad",
		host.Timer().FrameCount(), host.Timer().Total(), scene.angle())
}

// spinScene integrates a rotation angle and pretends to draw it.
type spinScene struct {
	mu  sync.Mutex
	rot float64
}

func (s *spinScene) ProcessInput() {}

func (s *spinScene) Update(f *frame.Frame, delta time.Duration) {
	s.mu.Lock()
	s.rot = math.Mod(s.rot+delta.Seconds()*math.Pi, 2*math.Pi)
	s.mu.Unlock()
}

func (s *spinScene) Render(f *frame.Frame) bool {
	rendered := false
	for _, id := range f.Displays() {
		if _, ok := f.BackBuffer(id); ok {
			rendered = true
		}
	}
	return rendered
}

func (s *spinScene) OnDisplayAdded(id resources.DisplayID) {
	xrhost.Logger().Info("scene: display content allocated", "display", uint32(id))
}

func (s *spinScene) OnDisplayRemoved(id resources.DisplayID) {}

func (s *spinScene) SaveState() error { return nil }
func (s *spinScene) LoadState() error { return nil }

func (s *spinScene) angle() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rot
}

// simDevice is a device stand-in. Trim is a no-op hook the manager
// exercises during suspend.
type simDevice struct{}

func (*simDevice) Poll(wait bool) {}
func (*simDevice) Destroy()       {}
func (*simDevice) Trim()          {}

// simHandle exposes the simulated device to the resource manager.
type simHandle struct {
	dev *simDevice
}

func (h simHandle) Device() gpucontext.Device   { return h.dev }
func (h simHandle) Queue() gpucontext.Queue     { return nil }
func (h simHandle) Adapter() gpucontext.Adapter { return nil }
func (h simHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}
func (h simHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// simTexture is a memory-only texture.
type simTexture struct {
	width  uint32
	height uint32
	format gputypes.TextureFormat
}

func (t *simTexture) Width() uint32                              { return t.width }
func (t *simTexture) Height() uint32                             { return t.height }
func (t *simTexture) Format() gputypes.TextureFormat             { return t.format }
func (t *simTexture) CreateView() (resources.TextureView, error) { return simView{}, nil }
func (t *simTexture) Destroy()                                   {}

type simView struct{}

func (simView) Destroy() {}

// simAllocator creates memory-only textures.
type simAllocator struct{}

func (simAllocator) CreateTexture(desc resources.TextureDescriptor) (resources.Texture, error) {
	return &simTexture{width: desc.Width, height: desc.Height, format: desc.Format}, nil
}

// simSurface simulates the platform: it produces frame predictions for
// the attached displays at a fixed cadence and drives the lifecycle
// script.
type simSurface struct {
	interval time.Duration

	mu       sync.Mutex
	events   xrhost.LifecycleEvents
	displays map[resources.DisplayID]resources.Texture
}

func newSimSurface(interval time.Duration) *simSurface {
	return &simSurface{
		interval: interval,
		displays: make(map[resources.DisplayID]resources.Texture),
	}
}

func (s *simSurface) CreateSpace() (frame.Space, error) { return (*simSpace)(s), nil }

func (s *simSurface) Subscribe(e xrhost.LifecycleEvents) {
	s.mu.Lock()
	s.events = e
	s.mu.Unlock()
}

func (s *simSurface) Unsubscribe(xrhost.LifecycleEvents) {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

func (s *simSurface) Activate() {}

// attach runs the add handshake and publishes the display into frame
// predictions once the host completes it.
func (s *simSurface) attach(id resources.DisplayID, spec resources.DisplaySpec) {
	done := make(chan struct{})
	s.host().DisplayAdded(id, spec, xrhost.NewDeferral(func() { close(done) }))
	<-done

	s.mu.Lock()
	s.displays[id] = &simTexture{width: spec.Width, height: spec.Height, format: gputypes.TextureFormatBGRA8Unorm}
	s.mu.Unlock()
}

// detach withdraws the display from predictions, then runs the remove
// handshake.
func (s *simSurface) detach(id resources.DisplayID) {
	s.mu.Lock()
	delete(s.displays, id)
	s.mu.Unlock()

	done := make(chan struct{})
	s.host().DisplayRemoved(id, xrhost.NewDeferral(func() { close(done) }))
	<-done
}

func (s *simSurface) host() xrhost.LifecycleEvents {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// runScript drives a full session: attach, render, hide/show, suspend
// and resume, lose and restore the device, detach, close.
func (s *simSurface) runScript(frames int) {
	h := s.host()
	spec := resources.DisplaySpec{Width: 1920, Height: 1080}

	s.attach(1, spec)
	s.attach(2, spec)

	third := time.Duration(frames/3) * s.interval
	time.Sleep(third)

	h.VisibilityChanged(false)
	time.Sleep(50 * time.Millisecond)
	h.VisibilityChanged(true)

	done := make(chan struct{})
	h.Suspending(xrhost.NewDeferral(func() { close(done) }))
	<-done
	h.Resuming()

	time.Sleep(third)

	h.DeviceLost()
	h.DeviceRestored()

	time.Sleep(third)

	s.detach(2)
	s.detach(1)
	h.WindowClosed()
}

// simSpace produces frames for the surface's attached displays.
type simSpace simSurface

func (s *simSpace) CreateNextFrame() (*frame.Frame, error) {
	time.Sleep(s.interval)

	s.mu.Lock()
	defer s.mu.Unlock()
	pred := frame.Prediction{PresentTime: time.Now().Add(s.interval)}
	buffers := make(map[resources.DisplayID]resources.Texture, len(s.displays))
	for id, bb := range s.displays {
		pred.Displays = append(pred.Displays, frame.PredictedDisplay{
			ID:         id,
			Pose:       frame.IdentityPose(),
			View:       f64.Mat4{0: 1, 5: 1, 10: 1, 15: 1},
			Projection: f64.Mat4{0: 1, 5: 1, 10: 1, 15: 1},
		})
		buffers[id] = bb
	}
	return frame.New(pred, buffers, s), nil
}

func (s *simSpace) Present(id resources.DisplayID) bool { return true }
