package xrhost

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/xrhost/frame"
	"github.com/gogpu/xrhost/resources"
	"github.com/gogpu/xrhost/timer"
)

// fakeClock is a manually advanced time source shared between the test
// and the simulated platform.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// testTexture implements resources.Texture.
type testTexture struct{}

func (testTexture) Width() uint32                              { return 64 }
func (testTexture) Height() uint32                             { return 64 }
func (testTexture) Format() gputypes.TextureFormat             { return gputypes.TextureFormatBGRA8Unorm }
func (testTexture) CreateView() (resources.TextureView, error) { return testView{}, nil }
func (testTexture) Destroy()                                   {}

// testView implements resources.TextureView.
type testView struct{}

func (testView) Destroy() {}

// testAllocator implements resources.TextureAllocator.
type testAllocator struct{}

func (testAllocator) CreateTexture(resources.TextureDescriptor) (resources.Texture, error) {
	return testTexture{}, nil
}

// testSpace simulates the rendering space: each frame predicts the
// displays currently attached to the manager, hands out stable back
// buffers, and advances the shared clock by one frame interval.
type testSpace struct {
	mu       sync.Mutex
	clock    *fakeClock
	interval time.Duration
	mgr      *resources.Manager
	displays []resources.DisplayID
	buffers  map[resources.DisplayID]resources.Texture
	frames   atomic.Int64
	presents atomic.Int64
	failNext atomic.Bool
}

func newTestSpace(clock *fakeClock, interval time.Duration) *testSpace {
	return &testSpace{
		clock:    clock,
		interval: interval,
		buffers:  make(map[resources.DisplayID]resources.Texture),
	}
}

func (s *testSpace) predict(ids ...resources.DisplayID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays = ids
	for _, id := range ids {
		if _, ok := s.buffers[id]; !ok {
			s.buffers[id] = testTexture{}
		}
	}
}

func (s *testSpace) CreateNextFrame() (*frame.Frame, error) {
	if s.failNext.CompareAndSwap(true, false) {
		return nil, errors.New("simulated device failure")
	}
	s.clock.advance(s.interval)
	s.frames.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	pred := frame.Prediction{}
	buffers := make(map[resources.DisplayID]resources.Texture, len(s.displays))
	for _, id := range s.displays {
		pred.Displays = append(pred.Displays, frame.PredictedDisplay{
			ID:         id,
			Pose:       frame.IdentityPose(),
			Projection: f64.Mat4{0: 1, 5: 1, 10: 1, 15: 1},
		})
		buffers[id] = s.buffers[id]
	}
	return frame.New(pred, buffers, s), nil
}

func (s *testSpace) Present(resources.DisplayID) bool {
	s.presents.Add(1)
	return true
}

// testSurface implements Surface plus the Subscriber upgrade.
type testSurface struct {
	space      *testSpace
	subscribed LifecycleEvents
	activated  atomic.Int64
}

func (s *testSurface) CreateSpace() (frame.Space, error) { return s.space, nil }
func (s *testSurface) Subscribe(e LifecycleEvents)       { s.subscribed = e }
func (s *testSurface) Unsubscribe(LifecycleEvents)       { s.subscribed = nil }
func (s *testSurface) Activate()                         { s.activated.Add(1) }

// countingScene records callback invocations.
type countingScene struct {
	SceneBase
	mu         sync.Mutex
	inputs     int
	updates    int
	renders    int
	deltas     []time.Duration
	renderOK   bool
	closeAfter int   // renders before WindowClosed, 0 = never
	host       *Host // set by tests that use closeAfter
}

func (s *countingScene) ProcessInput() {
	s.mu.Lock()
	s.inputs++
	s.mu.Unlock()
}

func (s *countingScene) Update(f *frame.Frame, delta time.Duration) {
	s.mu.Lock()
	s.updates++
	s.deltas = append(s.deltas, delta)
	s.mu.Unlock()
}

func (s *countingScene) Render(f *frame.Frame) bool {
	s.mu.Lock()
	s.renders++
	renders := s.renders
	ok := s.renderOK
	closeAfter := s.closeAfter
	host := s.host
	s.mu.Unlock()

	if closeAfter > 0 && renders >= closeAfter && host != nil {
		host.WindowClosed()
	}
	return ok
}

func (s *countingScene) counts() (inputs, updates, renders int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs, s.updates, s.renders
}

// newTestHost wires a host with a fake clock, simulated space, and
// counting scene.
func newTestHost(t *testing.T, scene *countingScene) (*Host, *testSpace, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	st := timer.New(timer.WithClock(clock.now))
	h := New(scene, WithTimer(st))
	if err := h.Initialize(resources.NullDeviceHandle{}, testAllocator{}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	space := newTestSpace(clock, 16*time.Millisecond)
	if err := h.SetSurface(&testSurface{space: space}); err != nil {
		t.Fatalf("SetSurface() error = %v", err)
	}
	scene.host = h
	return h, space, clock
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunNotInitialized(t *testing.T) {
	h := New(nil)
	if err := h.Run(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Run() error = %v, want ErrNotInitialized", err)
	}
}

func TestRunThreeFrames(t *testing.T) {
	scene := &countingScene{renderOK: true, closeAfter: 3}
	h, space, _ := newTestHost(t, scene)

	if err := h.Resources().AddDisplay(1, resources.DisplaySpec{Width: 64, Height: 64}); err != nil {
		t.Fatalf("AddDisplay() error = %v", err)
	}
	space.predict(1)

	if err := h.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	inputs, updates, renders := scene.counts()
	if updates != 3 {
		t.Errorf("updates = %d, want 3", updates)
	}
	if renders != 3 {
		t.Errorf("renders = %d, want 3", renders)
	}
	if inputs != 3 {
		t.Errorf("inputs = %d, want 3", inputs)
	}
	// The first tick only establishes the timing baseline.
	if scene.deltas[0] != 0 {
		t.Errorf("delta[0] = %v, want 0 (baseline tick)", scene.deltas[0])
	}
	for i, d := range scene.deltas[1:] {
		if d != 16*time.Millisecond {
			t.Errorf("delta[%d] = %v, want 16ms", i+1, d)
		}
	}
	if got := space.presents.Load(); got != 3 {
		t.Errorf("presents = %d, want 3", got)
	}
	if h.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", h.State())
	}
	if got := h.Timer().FrameCount(); got != 3 {
		t.Errorf("FrameCount() = %d, want 3", got)
	}
}

func TestRunTwiceFails(t *testing.T) {
	scene := &countingScene{}
	h, _, _ := newTestHost(t, scene)

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "loop start", func() bool { return h.running.Load() })
	if err := h.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}

	h.WindowClosed()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestHiddenLoopRendersNothing(t *testing.T) {
	scene := &countingScene{renderOK: true}
	h, space, _ := newTestHost(t, scene)
	space.predict()

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "first frames", func() bool { return space.frames.Load() >= 2 })

	h.VisibilityChanged(false)
	waitFor(t, "pause", func() bool { return h.State() == StatePaused })

	framesAtPause := space.frames.Load()
	_, _, rendersAtPause := scene.counts()

	// Give the loop ample chances to misbehave: it must not produce
	// frames or renders while hidden.
	for i := 0; i < 10; i++ {
		time.Sleep(time.Millisecond)
	}
	if got := space.frames.Load(); got != framesAtPause {
		t.Errorf("frames while hidden = %d, want %d", got, framesAtPause)
	}
	_, _, renders := scene.counts()
	if renders != rendersAtPause {
		t.Errorf("renders while hidden = %d, want %d", renders, rendersAtPause)
	}

	// Becoming visible resumes frame production.
	h.VisibilityChanged(true)
	waitFor(t, "resume", func() bool { return space.frames.Load() > framesAtPause })

	h.WindowClosed()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestCloseExitsPromptly(t *testing.T) {
	scene := &countingScene{}
	h, space, _ := newTestHost(t, scene)
	space.predict()

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "loop start", func() bool { return space.frames.Load() >= 1 })

	h.WindowClosed()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after WindowClosed")
	}
	if h.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", h.State())
	}
}

func TestCloseWhileHidden(t *testing.T) {
	scene := &countingScene{}
	h, space, _ := newTestHost(t, scene)
	space.predict()

	h.VisibilityChanged(false)

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "pause", func() bool { return h.State() == StatePaused })

	// The parked loop must wake for the close notification.
	h.WindowClosed()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("parked Run did not exit after WindowClosed")
	}
}

func TestRenderFailureSkipsPresent(t *testing.T) {
	// Render returning false must not present. Observed indirectly: the
	// space records presents through the manager.
	scene := &countingScene{renderOK: false, closeAfter: 3}
	h, space, _ := newTestHost(t, scene)

	if err := h.Resources().AddDisplay(1, resources.DisplaySpec{Width: 64, Height: 64}); err != nil {
		t.Fatalf("AddDisplay() error = %v", err)
	}
	space.predict(1)

	if err := h.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	_, _, renders := scene.counts()
	if renders != 3 {
		t.Errorf("renders = %d, want 3", renders)
	}
	if got := space.presents.Load(); got != 0 {
		t.Errorf("presents = %d, want 0 when Render reports failure", got)
	}
}

func TestDeviceFailureConvertsToDeviceLost(t *testing.T) {
	scene := &countingScene{renderOK: true}
	h, space, _ := newTestHost(t, scene)

	if err := h.Resources().AddDisplay(1, resources.DisplaySpec{Width: 64, Height: 64}); err != nil {
		t.Fatalf("AddDisplay() error = %v", err)
	}
	space.predict(1)

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "frames", func() bool { return space.frames.Load() >= 1 })

	space.failNext.Store(true)
	waitFor(t, "device lost", func() bool { return h.Resources().DeviceLost() })

	// The loop survives the failure and keeps iterating.
	frames := space.frames.Load()
	waitFor(t, "loop continues", func() bool { return space.frames.Load() > frames })

	h.WindowClosed()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestSetSurfaceNilParksLoop(t *testing.T) {
	scene := &countingScene{}
	h, space, _ := newTestHost(t, scene)
	space.predict()

	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	waitFor(t, "loop start", func() bool { return space.frames.Load() >= 1 })

	if err := h.SetSurface(nil); err != nil {
		t.Fatalf("SetSurface(nil) error = %v", err)
	}
	waitFor(t, "pause", func() bool { return h.State() == StatePaused })

	h.WindowClosed()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestLoadForwardsToLoader(t *testing.T) {
	h := New(nil)
	if err := h.Load("entry"); err != nil {
		t.Errorf("Load() without Loader error = %v, want nil", err)
	}

	ls := &loadingScene{}
	h = New(ls)
	if err := h.Load("app://start"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ls.loaded != "app://start" {
		t.Errorf("loaded entry = %q, want %q", ls.loaded, "app://start")
	}
}

// loadingScene implements Scene plus the Loader upgrade.
type loadingScene struct {
	SceneBase
	loaded string
}

func (s *loadingScene) Load(entry string) error {
	s.loaded = entry
	return nil
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{StateTerminated, "terminated"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
