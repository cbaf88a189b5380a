package fractal

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/math"
)

type simFence struct {
	signaled bool
	waits    int
}

func (f *simFence) Signaled() (bool, error) { return f.signaled, nil }

// Wait on a simulated fence completes the pending GPU work.
func (f *simFence) Wait() error {
	f.waits++
	f.signaled = true
	return nil
}

type simTargets struct {
	t       *testing.T
	compute [SlotCount]*simFence
	frames  [2]*simFence
	extents [SlotCount][2]uint32
	live    [SlotCount]bool

	// samplers mirrors MarkSampled so storage access can be checked
	// against the sampling frame's fence.
	samplers [SlotCount]int

	jobs      []Job
	initial   []Job
	idle      []int
	bound     []int
	destroyed []int
	kernels   int
	gpuTime   time.Duration
}

func newSimTargets(t *testing.T) *simTargets {
	s := &simTargets{t: t, gpuTime: 3 * time.Millisecond}
	for i := range s.compute {
		s.compute[i] = &simFence{signaled: true}
	}
	for i := range s.frames {
		s.frames[i] = &simFence{signaled: true}
	}
	for i := range s.samplers {
		s.samplers[i] = NoFrame
	}
	return s
}

// sampleInFlight marks slot as drawn by a frame that the GPU has not finished.
func (s *simTargets) sampleInFlight(m *Manager, slot, frame int) {
	m.MarkSampled(slot, frame)
	s.samplers[slot] = frame
	s.frames[frame].signaled = false
}

func (s *simTargets) checkNotSampled(slot int, op string) {
	if f := s.samplers[slot]; f != NoFrame && !s.frames[f].signaled {
		s.t.Errorf("slot %d %s while frame %d may still sample it", slot, op, f)
	}
}

func (s *simTargets) CreateTarget(slot int, width, height uint32) error {
	if s.live[slot] {
		s.t.Errorf("slot %d created twice without destroy", slot)
	}
	if width%TileSize != 0 || height%TileSize != 0 {
		s.t.Errorf("slot %d created at %dx%d, not tile aligned", slot, width, height)
	}
	s.live[slot] = true
	s.extents[slot] = [2]uint32{width, height}
	return nil
}

func (s *simTargets) DestroyTarget(slot int) {
	if !s.compute[slot].signaled {
		s.t.Errorf("slot %d destroyed with compute in flight", slot)
	}
	s.checkNotSampled(slot, "destroyed")
	s.live[slot] = false
	s.destroyed = append(s.destroyed, slot)
}

func (s *simTargets) BindDisplay(slot int) error {
	s.bound = append(s.bound, slot)
	return nil
}

func (s *simTargets) Dispatch(job Job) error {
	if !s.compute[job.Slot].signaled {
		s.t.Errorf("slot %d dispatched while its fence is unsignaled", job.Slot)
	}
	if !s.live[job.Slot] {
		s.t.Errorf("slot %d dispatched without storage", job.Slot)
	}
	s.checkNotSampled(job.Slot, "dispatched")
	s.compute[job.Slot].signaled = false
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *simTargets) DispatchInitial(job Job, idle []int) error {
	s.initial = append(s.initial, job)
	s.idle = append(s.idle, idle...)
	return nil
}

func (s *simTargets) ComputeFence(slot int) Fence { return s.compute[slot] }
func (s *simTargets) FrameFence(frame int) Fence  { return s.frames[frame] }

func (s *simTargets) ComputeTime(slot int) (time.Duration, error) {
	return s.gpuTime, nil
}

func (s *simTargets) RebuildKernel(kernel []uint32) error {
	for i, f := range s.compute {
		if !f.signaled {
			s.t.Errorf("kernel rebuilt with slot %d in flight", i)
		}
	}
	s.kernels++
	return nil
}

func (s *simTargets) lastJob() Job {
	s.t.Helper()
	if len(s.jobs) == 0 {
		s.t.Fatal("no dispatch recorded")
	}
	return s.jobs[len(s.jobs)-1]
}

func newTestManager(t *testing.T, width, height int) (*Manager, *simTargets) {
	t.Helper()
	targets := newSimTargets(t)
	m := NewManager(targets)
	if err := m.Initialize(width, height, math.NewMat3Identity()); err != nil {
		t.Fatalf("Initialize: %s", err)
	}
	return m, targets
}

func TestInitializeComputesFront(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)

	if len(targets.initial) != 1 || targets.initial[0].Slot != m.Front() || !targets.initial[0].Initial {
		t.Fatalf("initial dispatch = %+v, want one initial job on front %d", targets.initial, m.Front())
	}
	if len(targets.idle) != SlotCount-1 || targets.idle[0] == m.Front() {
		t.Fatalf("idle slots = %v", targets.idle)
	}
	if got := m.Slot(m.Front()).State; got != SlotReady {
		t.Fatalf("front state = %s, want READY", got)
	}
	if got := m.Slot(m.Back()).State; got != SlotEmpty {
		t.Fatalf("back state = %s, want EMPTY", got)
	}
	if len(targets.bound) != 1 || targets.bound[0] != m.Front() {
		t.Fatalf("display bound to %v", targets.bound)
	}
}

func TestInitializeRejectsEmptyFramebuffer(t *testing.T) {
	m := NewManager(newSimTargets(t))
	err := m.Initialize(0, 480, math.NewMat3Identity())
	if !errors.Is(err, core.ErrImageCreate) {
		t.Fatalf("err = %v, want ErrImageCreate", err)
	}
	if m.Initialized() {
		t.Fatal("failed Initialize left the manager initialized")
	}
}

func TestBackPressureSkipsUnretiredSlot(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)
	front := m.Front()

	dispatched, err := m.Advance(640, 480, math.NewMat3Identity())
	if err != nil || !dispatched {
		t.Fatalf("first advance = %v, %v", dispatched, err)
	}
	if m.Front() != front {
		t.Fatal("empty back slot was promoted to front")
	}

	for i := 0; i < 5; i++ {
		dispatched, err = m.Advance(640, 480, math.NewMat3Identity())
		if err != nil {
			t.Fatal(err)
		}
		if dispatched {
			t.Fatalf("tick %d dispatched while back slot still computing", i)
		}
	}
	if len(targets.jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(targets.jobs))
	}
	if m.Front() != front {
		t.Fatal("front changed without a retired compute")
	}
}

func TestRetiredSlotBecomesFront(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)
	if _, err := m.Advance(640, 480, math.NewMat3Identity()); err != nil {
		t.Fatal(err)
	}
	computing := m.Back()
	oldFront := m.Front()
	m.MarkSampled(oldFront, 1)

	targets.compute[computing].signaled = true
	dispatched, err := m.Advance(640, 480, math.NewMat3Translation2D(math.NewVec2(0.5, 0)))
	if err != nil || !dispatched {
		t.Fatalf("advance = %v, %v", dispatched, err)
	}
	if m.Front() != computing {
		t.Fatalf("front = %d, want retired slot %d", m.Front(), computing)
	}
	if targets.lastJob().Slot != oldFront {
		t.Fatalf("dispatched slot %d, want old front %d", targets.lastJob().Slot, oldFront)
	}
	if targets.frames[1].waits != 1 {
		t.Fatalf("frame fence waits = %d, want 1 before reusing a sampled slot", targets.frames[1].waits)
	}
	if targets.bound[len(targets.bound)-1] != computing {
		t.Fatalf("display bound to %v, want %d last", targets.bound, computing)
	}
	if m.ComputeTime() != targets.gpuTime {
		t.Fatalf("compute time = %s, want %s", m.ComputeTime(), targets.gpuTime)
	}
}

func TestSampledSlotWaitsForItsFrame(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		resized       bool
	}{
		{"same size", 640, 480, false},
		{"resize", 645, 490, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, targets := newTestManager(t, 640, 480)
			if _, err := m.Advance(640, 480, math.NewMat3Identity()); err != nil {
				t.Fatal(err)
			}
			front, computing := m.Front(), m.Back()

			targets.sampleInFlight(m, front, 1)
			// frame 0 is busy too but never drew the slot, so it must not be waited on
			targets.frames[0].signaled = false
			targets.compute[computing].signaled = true

			dispatched, err := m.Advance(tt.width, tt.height, math.NewMat3Identity())
			if err != nil || !dispatched {
				t.Fatalf("advance = %v, %v", dispatched, err)
			}
			if targets.frames[1].waits != 1 {
				t.Fatalf("sampling frame waits = %d, want 1", targets.frames[1].waits)
			}
			if targets.frames[0].waits != 0 {
				t.Fatalf("unrelated frame waits = %d, want 0", targets.frames[0].waits)
			}

			job := targets.lastJob()
			if job.Slot != front || job.Initial != tt.resized {
				t.Fatalf("job = %+v, want slot %d with initial=%v", job, front, tt.resized)
			}
			destroyed := len(targets.destroyed) > 0 && targets.destroyed[len(targets.destroyed)-1] == front
			if destroyed != tt.resized {
				t.Fatalf("destroyed = %v, want slot %d recreated only on resize", targets.destroyed, front)
			}
			if got := m.Slot(front).LastFrame; got != NoFrame && tt.resized {
				t.Fatalf("recreated slot still records frame %d as sampler", got)
			}
		})
	}
}

func TestFrontNeverComputing(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)

	// retire every third tick; the simulated fences flag any discipline violation
	for tick := 0; tick < 60; tick++ {
		if tick%3 == 0 {
			for _, f := range targets.compute {
				f.signaled = true
			}
		}
		if _, err := m.Advance(640, 480, math.NewMat3Identity()); err != nil {
			t.Fatal(err)
		}
		m.MarkSampled(m.Front(), tick%2)

		if m.Front() == m.Back() {
			t.Fatalf("tick %d: front and back are both %d", tick, m.Front())
		}
		if got := m.Slot(m.Front()).State; got != SlotReady {
			t.Fatalf("tick %d: front state = %s", tick, got)
		}
	}
}

func TestResizeRecreatesSlots(t *testing.T) {
	tests := []struct {
		name          string
		from          [2]int
		to            [2]int
		width, height uint32
	}{
		{"aligned", [2]int{640, 480}, [2]int{800, 600}, 800, 600},
		{"rounded up", [2]int{640, 480}, [2]int{645, 490}, 648, 496},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, targets := newTestManager(t, tt.from[0], tt.from[1])
			front := m.Front()

			if _, err := m.Advance(tt.to[0], tt.to[1], math.NewMat3Identity()); err != nil {
				t.Fatal(err)
			}
			job := targets.lastJob()
			if !job.Initial || job.Width != tt.width || job.Height != tt.height {
				t.Fatalf("job = %+v, want initial %dx%d", job, tt.width, tt.height)
			}
			if gx, gy := m.Slot(job.Slot).Dispatch(); gx != tt.width/8 || gy != tt.height/8 {
				t.Fatalf("dispatch grid = %dx%d", gx, gy)
			}
			// the displayed image keeps its old size until replaced
			if s := m.Slot(front); s.Width != uint32(tt.from[0]) || s.Height != uint32(tt.from[1]) {
				t.Fatalf("front resized early to %dx%d", s.Width, s.Height)
			}

			targets.compute[job.Slot].signaled = true
			if _, err := m.Advance(tt.to[0], tt.to[1], math.NewMat3Identity()); err != nil {
				t.Fatal(err)
			}
			second := targets.lastJob()
			if second.Slot != front || !second.Initial {
				t.Fatalf("old front not recreated: %+v", second)
			}
			for i := 0; i < SlotCount; i++ {
				if targets.extents[i] != [2]uint32{tt.width, tt.height} {
					t.Fatalf("slot %d extent = %v", i, targets.extents[i])
				}
			}

			targets.compute[second.Slot].signaled = true
			if _, err := m.Advance(tt.to[0], tt.to[1], math.NewMat3Identity()); err != nil {
				t.Fatal(err)
			}
			if targets.lastJob().Initial {
				t.Fatal("same-size dispatch used the initial transition")
			}
		})
	}
}

func TestMinimizedWindowSkipsDispatch(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)
	dispatched, err := m.Advance(0, 0, math.NewMat3Identity())
	if err != nil || dispatched {
		t.Fatalf("advance = %v, %v", dispatched, err)
	}
	if len(targets.jobs) != 0 || len(targets.destroyed) != 0 {
		t.Fatal("minimized tick touched GPU resources")
	}
}

func TestTweenIdentity(t *testing.T) {
	m, _ := newTestManager(t, 640, 480)
	current := math.NewMat3Translation2D(math.NewVec2(-0.75, 0.1)).Mul(math.NewMat3Scale2D(math.NewVec2(0.01, 0.01)))
	m.slots[m.Front()].Map = current

	if tween := m.TweenMap(current); !tween.ApproxEqual(math.NewMat3Identity(), 1e-4) {
		t.Fatalf("tween = %v, want identity", tween.Data)
	}
}

func TestTweenFollowsPan(t *testing.T) {
	m, _ := newTestManager(t, 640, 480)
	current := math.NewMat3Translation2D(math.NewVec2(0.25, 0))
	got := m.TweenMap(current).TransformPoint(math.NewVec2Zero())
	if got != math.NewVec2(0.25, 0) {
		t.Fatalf("tween(0,0) = %+v", got)
	}
}

func TestRebuildWaitsForCompute(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)
	if _, err := m.Advance(640, 480, math.NewMat3Identity()); err != nil {
		t.Fatal(err)
	}
	back := m.Back()
	if err := m.Rebuild([]uint32{0x07230203}); err != nil {
		t.Fatal(err)
	}
	if targets.compute[back].waits != 1 || targets.kernels != 1 {
		t.Fatalf("waits = %d, rebuilds = %d", targets.compute[back].waits, targets.kernels)
	}
}

func TestDestroyReleasesSlots(t *testing.T) {
	m, targets := newTestManager(t, 640, 480)
	if !m.Initialized() {
		t.Fatal("manager not initialized after Initialize")
	}
	if _, err := m.Advance(640, 480, math.NewMat3Identity()); err != nil {
		t.Fatal(err)
	}
	if err := m.Destroy(); err != nil {
		t.Fatal(err)
	}
	if m.Initialized() {
		t.Fatal("manager still initialized after Destroy")
	}
	for i, live := range targets.live {
		if live {
			t.Fatalf("slot %d still allocated", i)
		}
	}
	if err := m.Destroy(); err != nil {
		t.Fatalf("second destroy: %s", err)
	}
}
