package fractal

import (
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/math"
)

// SlotCount is the number of fractal images rotated between compute and display.
const SlotCount = 2

// TileSize is the compute workgroup edge. Images are allocated in multiples of it.
const TileSize uint32 = 8

// NoFrame marks a slot that no frame has sampled yet.
const NoFrame = -1

type SlotState int

const (
	// SlotEmpty has storage but no computed content yet.
	SlotEmpty SlotState = iota
	// SlotComputing has a compute submission in flight.
	SlotComputing
	// SlotReady holds a finished image that may be displayed.
	SlotReady
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "EMPTY"
	case SlotComputing:
		return "COMPUTING"
	case SlotReady:
		return "READY"
	}
	return "UNKNOWN"
}

/**
 * @brief Bookkeeping for one fractal image. The GPU objects themselves live in
 * the Targets implementation and are addressed by slot index.
 */
type Slot struct {
	State SlotState
	/** @brief Allocated image extent, always a multiple of TileSize. */
	Width  uint32
	Height uint32
	/** @brief Camera map captured when the slot was dispatched. */
	Map math.Mat3
	/** @brief Frame slot that last sampled this image, or NoFrame. */
	LastFrame int
}

// Dispatch returns the compute grid size for the slot.
func (s Slot) Dispatch() (uint32, uint32) {
	return math.DivCeil(s.Width, TileSize), math.DivCeil(s.Height, TileSize)
}

// Fence is a GPU completion signal as seen from the CPU.
type Fence interface {
	// Signaled polls the fence without blocking.
	Signaled() (bool, error)
	// Wait blocks until the fence is signaled.
	Wait() error
}

// Job describes one compute submission.
type Job struct {
	Slot int
	/** @brief True when the image was just (re)created and holds no defined layout. */
	Initial bool
	Map     math.Mat3
	Width   uint32
	Height  uint32
}

/**
 * @brief The GPU side of the fractal buffers. One implementation records real
 * Vulkan work, tests substitute simulated fences.
 */
type Targets interface {
	// CreateTarget allocates the image and view of a slot.
	CreateTarget(slot int, width, height uint32) error
	// DestroyTarget releases the image and view of a slot. Callers guarantee that
	// no GPU work still references it.
	DestroyTarget(slot int)
	// BindDisplay points the display stage at the slot for upcoming draws.
	BindDisplay(slot int) error
	// Dispatch records and submits the compute work for the job, resetting and
	// then signaling the slot's compute fence.
	Dispatch(job Job) error
	// DispatchInitial computes job.Slot and prepares every slot in idle for
	// sampling, returning once the GPU has finished.
	DispatchInitial(job Job, idle []int) error
	// ComputeFence returns the completion fence of a slot.
	ComputeFence(slot int) Fence
	// FrameFence returns the in-flight fence of a frame slot.
	FrameFence(frame int) Fence
	// ComputeTime reports the GPU duration of the last retired dispatch of the slot.
	ComputeTime(slot int) (time.Duration, error)
	// RebuildKernel replaces the compute pipeline once the device is idle.
	RebuildKernel(kernel []uint32) error
}
