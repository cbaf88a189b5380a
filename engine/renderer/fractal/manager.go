package fractal

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/containers"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/math"
)

/**
 * @brief Rotates the fractal images between the compute queue and the display.
 * The front slot is always READY and is what the display samples. The back slot
 * is the one being computed. The back only becomes front once its compute fence
 * has signaled, so a slow kernel never stalls the render loop.
 */
type Manager struct {
	targets     Targets
	ring        *containers.SlotRing
	slots       [SlotCount]Slot
	computeTime time.Duration
	initialized bool

	// Dispatches counts compute submissions, init included.
	Dispatches uint64
}

func NewManager(targets Targets) *Manager {
	m := &Manager{
		targets: targets,
		ring:    containers.NewSlotRing(SlotCount),
	}
	for i := range m.slots {
		m.slots[i] = Slot{State: SlotEmpty, LastFrame: NoFrame, Map: math.NewMat3Identity()}
	}
	return m
}

// TargetExtent rounds a framebuffer size up to whole compute tiles.
func TargetExtent(width, height int) (uint32, uint32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return math.CeilToMultiple(uint32(width), TileSize), math.CeilToMultiple(uint32(height), TileSize)
}

/**
 * @brief Creates every slot at the framebuffer size and computes the front one
 * synchronously so the very first frame has something to show.
 *
 * @param width Framebuffer width in pixels.
 * @param height Framebuffer height in pixels.
 * @param affineMap The camera map at startup.
 */
func (m *Manager) Initialize(width, height int, affineMap math.Mat3) error {
	w, h := TargetExtent(width, height)
	if w == 0 || h == 0 {
		return fmt.Errorf("fractal targets need a non-empty framebuffer, got %dx%d: %w", width, height, core.ErrImageCreate)
	}
	for i := range m.slots {
		if err := m.targets.CreateTarget(i, w, h); err != nil {
			for j := 0; j < i; j++ {
				m.targets.DestroyTarget(j)
			}
			return err
		}
		m.slots[i].Width, m.slots[i].Height = w, h
	}

	front := m.ring.Current()
	idle := make([]int, 0, SlotCount-1)
	for i := range m.slots {
		if i != front {
			idle = append(idle, i)
		}
	}
	m.slots[front].Map = affineMap
	job := Job{Slot: front, Initial: true, Map: affineMap, Width: w, Height: h}
	if err := m.targets.DispatchInitial(job, idle); err != nil {
		m.destroyTargets()
		return err
	}
	m.Dispatches++
	m.slots[front].State = SlotReady
	if err := m.targets.BindDisplay(front); err != nil {
		m.destroyTargets()
		return err
	}
	m.initialized = true
	core.LogDebug("fractal targets initialized at %dx%d, front slot %d", w, h, front)
	return nil
}

/**
 * @brief Called once per tick. Promotes the back slot when its compute has
 * retired and starts computing the next one with the camera map of this tick.
 *
 * @return true when a new dispatch was submitted.
 */
func (m *Manager) Advance(width, height int, currentMap math.Mat3) (bool, error) {
	back := m.ring.Next()

	switch m.slots[back].State {
	case SlotComputing:
		signaled, err := m.targets.ComputeFence(back).Signaled()
		if err != nil {
			return false, err
		}
		if !signaled {
			return false, nil
		}
		m.promote(back)
		back = m.ring.Next()
	case SlotReady:
		// only reachable if a dispatch failed after promotion; recompute it
	case SlotEmpty:
		// never computed; fill it without swapping so front stays READY
	}

	w, h := TargetExtent(width, height)
	if w == 0 || h == 0 {
		// minimized, nothing can be allocated until the window comes back
		return false, nil
	}
	return true, m.dispatch(back, w, h, currentMap)
}

func (m *Manager) promote(slot int) {
	m.slots[slot].State = SlotReady
	if err := m.targets.BindDisplay(slot); err != nil {
		core.LogWarn("failed to bind fractal slot %d for display: %s", slot, err)
	}
	m.ring.Advance()

	if d, err := m.targets.ComputeTime(slot); err == nil {
		m.computeTime = d
	}
}

func (m *Manager) dispatch(slot int, w, h uint32, currentMap math.Mat3) error {
	s := &m.slots[slot]

	// the display may still be sampling this image from an older frame
	if s.LastFrame != NoFrame {
		if err := m.targets.FrameFence(s.LastFrame).Wait(); err != nil {
			return err
		}
	}

	initial := false
	if s.Width != w || s.Height != h {
		m.targets.DestroyTarget(slot)
		if err := m.targets.CreateTarget(slot, w, h); err != nil {
			return err
		}
		core.LogDebug("fractal slot %d resized %dx%d -> %dx%d", slot, s.Width, s.Height, w, h)
		s.Width, s.Height = w, h
		s.LastFrame = NoFrame
		initial = true
	}

	s.Map = currentMap
	if err := m.targets.Dispatch(Job{Slot: slot, Initial: initial, Map: currentMap, Width: w, Height: h}); err != nil {
		return err
	}
	s.State = SlotComputing
	m.Dispatches++
	return nil
}

// Initialized reports whether Initialize succeeded and Destroy has not run.
func (m *Manager) Initialized() bool {
	return m.initialized
}

// Front returns the slot the display samples.
func (m *Manager) Front() int {
	return m.ring.Current()
}

// Back returns the slot being computed or about to be.
func (m *Manager) Back() int {
	return m.ring.Next()
}

// Slot returns a copy of the bookkeeping of a slot.
func (m *Manager) Slot(i int) Slot {
	return m.slots[i]
}

// FrontMap returns the camera map the front image was computed with.
func (m *Manager) FrontMap() math.Mat3 {
	return m.slots[m.ring.Current()].Map
}

// TweenMap maps the current view onto the front image so the display can
// follow the camera before the next image arrives.
func (m *Manager) TweenMap(current math.Mat3) math.Mat3 {
	return m.FrontMap().Inverse().Mul(current)
}

// MarkSampled records that a frame slot drew the given fractal slot.
func (m *Manager) MarkSampled(slot, frame int) {
	m.slots[slot].LastFrame = frame
}

// ComputeTime returns the GPU duration of the most recently promoted image.
func (m *Manager) ComputeTime() time.Duration {
	return m.computeTime
}

// Rebuild swaps the compute kernel. Slots keep their content; the next dispatch
// uses the new pipeline.
func (m *Manager) Rebuild(kernel []uint32) error {
	if err := m.waitCompute(); err != nil {
		return err
	}
	return m.targets.RebuildKernel(kernel)
}

// Destroy waits for in-flight compute and releases every slot.
func (m *Manager) Destroy() error {
	if !m.initialized {
		return nil
	}
	err := m.waitCompute()
	m.destroyTargets()
	m.initialized = false
	return err
}

func (m *Manager) waitCompute() error {
	for i := range m.slots {
		if m.slots[i].State != SlotComputing {
			continue
		}
		if err := m.targets.ComputeFence(i).Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) destroyTargets() {
	for i := range m.slots {
		m.targets.DestroyTarget(i)
		m.slots[i].State = SlotEmpty
		m.slots[i].LastFrame = NoFrame
	}
}
