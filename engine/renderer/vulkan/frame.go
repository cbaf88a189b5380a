package vulkan

import vk "github.com/goki/vulkan"

type FrameState int

const (
	FRAME_STATE_IDLE FrameState = iota
	FRAME_STATE_ACQUIRED
	FRAME_STATE_SUBMITTED
	FRAME_STATE_PRESENTED
)

func (s FrameState) String() string {
	switch s {
	case FRAME_STATE_IDLE:
		return "IDLE"
	case FRAME_STATE_ACQUIRED:
		return "ACQUIRED"
	case FRAME_STATE_SUBMITTED:
		return "SUBMITTED"
	case FRAME_STATE_PRESENTED:
		return "PRESENTED"
	}
	return "UNKNOWN"
}

/**
 * @brief Everything one frame in flight needs. The in-flight fence guards
 * the command buffer and the timestamp pair; the semaphores order acquire,
 * render and present on the GPU.
 */
type FrameSlot struct {
	Index int
	State FrameState

	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       *VulkanFence
	CommandBuffer  *VulkanCommandBuffer
}

// frameTransitions lists the legal state moves. Any state may drop back to
// IDLE when a frame is abandoned for swapchain recreation.
var frameTransitions = map[FrameState]FrameState{
	FRAME_STATE_IDLE:      FRAME_STATE_ACQUIRED,
	FRAME_STATE_ACQUIRED:  FRAME_STATE_SUBMITTED,
	FRAME_STATE_SUBMITTED: FRAME_STATE_PRESENTED,
	FRAME_STATE_PRESENTED: FRAME_STATE_IDLE,
}

// advance moves the slot to next and reports whether the move was legal.
func (f *FrameSlot) advance(next FrameState) bool {
	ok := next == FRAME_STATE_IDLE || frameTransitions[f.State] == next
	f.State = next
	return ok
}

func NewFrameSlot(context *VulkanContext, index int) (*FrameSlot, error) {
	frame := &FrameSlot{Index: index}

	var err error
	if frame.ImageAvailable, err = NewSemaphore(context); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if frame.RenderFinished, err = NewSemaphore(context); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	// Create the fence in a signaled state, indicating that the first frame
	// has already been "rendered". This will prevent the application from
	// waiting indefinitely for the first frame to render since it cannot be
	// rendered until a frame is "rendered" before it.
	if frame.InFlight, err = NewFence(context, true); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if frame.CommandBuffer, err = NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	return frame, nil
}

func (f *FrameSlot) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if f.CommandBuffer != nil {
		f.CommandBuffer.Free(context, context.Device.GraphicsCommandPool)
		f.CommandBuffer = nil
	}
	if f.InFlight != nil {
		f.InFlight.Destroy()
		f.InFlight = nil
	}
	if f.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(device, f.ImageAvailable, context.Allocator)
		f.ImageAvailable = vk.NullSemaphore
	}
	if f.RenderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(device, f.RenderFinished, context.Allocator)
		f.RenderFinished = vk.NullSemaphore
	}
	f.State = FRAME_STATE_IDLE
}
