package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

// VulkanFence is a CPU-visible completion signal. It remembers the device and
// the wait budget so callers outside this package can wait on it without a
// context.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool

	device  vk.Device
	alloc   *vk.AllocationCallbacks
	timeout uint64
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
		device:     context.Device.LogicalDevice,
		alloc:      context.Allocator,
		timeout:    context.FenceTimeout,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if err := checkResult(vk.CreateFence(fence.device, &fenceCreateInfo, context.Allocator, &handle), core.ErrSyncCreate, "vkCreateFence"); err != nil {
		return nil, err
	}
	fence.Handle = handle
	return fence, nil
}

func (vf *VulkanFence) Destroy() {
	if vf.Handle != nil {
		vk.DestroyFence(vf.device, vf.Handle, vf.alloc)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

// Signaled polls the fence without blocking.
func (vf *VulkanFence) Signaled() (bool, error) {
	if vf.IsSignaled {
		return true, nil
	}
	switch result := vk.GetFenceStatus(vf.device, vf.Handle); result {
	case vk.Success:
		vf.IsSignaled = true
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, checkResult(result, core.ErrDeviceLost, "vkGetFenceStatus")
	}
}

// Wait blocks until the fence is signaled or the context timeout expires.
func (vf *VulkanFence) Wait() error {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return nil
	}
	result := vk.WaitForFences(vf.device, 1, []vk.Fence{vf.Handle}, vk.True, vf.timeout)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return nil
	case vk.Timeout:
		err := fmt.Errorf("vkWaitForFences after %dns: %w", vf.timeout, core.ErrFenceTimeout)
		core.LogWarn(err.Error())
		return err
	default:
		return checkResult(result, core.ErrDeviceLost, "vkWaitForFences")
	}
}

// Reset returns the fence to the unsignaled state ahead of a submission.
func (vf *VulkanFence) Reset() error {
	if err := checkResult(vk.ResetFences(vf.device, 1, []vk.Fence{vf.Handle}), core.ErrSyncCreate, "vkResetFences"); err != nil {
		return err
	}
	vf.IsSignaled = false
	return nil
}

// NewSemaphore creates a binary semaphore.
func NewSemaphore(context *VulkanContext) (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var semaphore vk.Semaphore
	if err := checkResult(vk.CreateSemaphore(context.Device.LogicalDevice, &info, context.Allocator, &semaphore), core.ErrSyncCreate, "vkCreateSemaphore"); err != nil {
		return nil, err
	}
	return semaphore, nil
}
