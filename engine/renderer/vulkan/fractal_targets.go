package vulkan

import (
	"fmt"
	"image"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/fractal"
)

// fractalTarget is the GPU half of a fractal.Slot.
type fractalTarget struct {
	Image         *VulkanImage
	Fence         *VulkanFence
	CommandBuffer *VulkanCommandBuffer
}

/**
 * @brief Realizes fractal.Targets on Vulkan. Compute work goes to the compute
 * queue from a pool of its own; display binding goes through the display stage.
 */
type FractalTargets struct {
	context    *VulkanContext
	compute    *FractalComputeStage
	display    *FractalDisplayStage
	targets    [fractal.SlotCount]fractalTarget
	timestamps *TimestampQueries
}

func NewFractalTargets(context *VulkanContext, compute *FractalComputeStage, display *FractalDisplayStage) (*FractalTargets, error) {
	ft := &FractalTargets{
		context: context,
		compute: compute,
		display: display,
	}
	for i := range ft.targets {
		// Signaled so the first wait on an unused slot returns at once.
		fence, err := NewFence(context, true)
		if err != nil {
			ft.Destroy()
			return nil, err
		}
		ft.targets[i].Fence = fence

		cb, err := NewVulkanCommandBuffer(context, context.Device.ComputeCommandPool, true)
		if err != nil {
			ft.Destroy()
			return nil, err
		}
		ft.targets[i].CommandBuffer = cb
	}
	timestamps, err := NewTimestampQueries(context, fractal.SlotCount)
	if err != nil {
		ft.Destroy()
		return nil, err
	}
	ft.timestamps = timestamps
	return ft, nil
}

func (ft *FractalTargets) CreateTarget(slot int, width, height uint32) error {
	img, err := ImageCreate(ft.context, ImageSpec{
		Width:      width,
		Height:     height,
		Format:     FractalImageFormat,
		Usage:      vk.ImageUsageFlags(vk.ImageUsageStorageBit | vk.ImageUsageSampledBit | vk.ImageUsageTransferSrcBit),
		Samples:    vk.SampleCount1Bit,
		Memory:     vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		CreateView: true,
	})
	if err != nil {
		return err
	}
	ft.targets[slot].Image = img
	ft.compute.BindOutput(slot, img.View)
	core.LogDebug("Fractal slot %d allocated at %dx%d.", slot, width, height)
	return nil
}

func (ft *FractalTargets) DestroyTarget(slot int) {
	if img := ft.targets[slot].Image; img != nil {
		img.Destroy(ft.context)
		ft.targets[slot].Image = nil
	}
}

func (ft *FractalTargets) BindDisplay(slot int) error {
	img := ft.targets[slot].Image
	if img == nil {
		return fmt.Errorf("slot %d has no image: %w", slot, core.ErrImageViewCreate)
	}
	ft.display.UpdateSlot(slot, img.View)
	return nil
}

func (ft *FractalTargets) record(job fractal.Job, idle []int) (*fractalTarget, error) {
	target := &ft.targets[job.Slot]
	if err := target.Fence.Reset(); err != nil {
		return nil, err
	}
	cb := target.CommandBuffer
	if err := cb.ResetBuffer(); err != nil {
		return nil, err
	}
	if err := cb.Begin(true, false, false); err != nil {
		return nil, err
	}
	for _, slot := range idle {
		if img := ft.targets[slot].Image; img != nil {
			ft.compute.RecordInitialToFragment(cb, img)
		}
	}
	ft.timestamps.CmdBegin(cb.Handle, job.Slot)
	ft.compute.RecordDispatch(cb, job.Slot, target.Image, job.Map, job.Initial)
	ft.timestamps.CmdEnd(cb.Handle, job.Slot)
	if err := cb.End(); err != nil {
		return nil, err
	}
	return target, nil
}

func (ft *FractalTargets) submit(target *fractalTarget) error {
	queue := ft.context.Device.ComputeQueue
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{target.CommandBuffer.Handle},
	}
	err := ft.context.Queues.SafeQueueCall(queue, func() error {
		return checkResult(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, target.Fence.Handle), core.ErrQueueSubmit, "vkQueueSubmit(compute)")
	})
	if err != nil {
		return err
	}
	target.CommandBuffer.UpdateSubmitted()
	return nil
}

func (ft *FractalTargets) Dispatch(job fractal.Job) error {
	target, err := ft.record(job, nil)
	if err != nil {
		return err
	}
	return ft.submit(target)
}

func (ft *FractalTargets) DispatchInitial(job fractal.Job, idle []int) error {
	target, err := ft.record(job, idle)
	if err != nil {
		return err
	}
	if err := ft.submit(target); err != nil {
		return err
	}
	return target.Fence.Wait()
}

func (ft *FractalTargets) ComputeFence(slot int) fractal.Fence {
	return ft.targets[slot].Fence
}

func (ft *FractalTargets) FrameFence(frame int) fractal.Fence {
	return ft.context.Frames[frame].InFlight
}

func (ft *FractalTargets) ComputeTime(slot int) (time.Duration, error) {
	return ft.timestamps.Duration(ft.context, slot)
}

func (ft *FractalTargets) RebuildKernel(kernel []uint32) error {
	if err := checkResult(vk.DeviceWaitIdle(ft.context.Device.LogicalDevice), core.ErrDeviceLost, "vkDeviceWaitIdle"); err != nil {
		return err
	}
	return ft.compute.Rebuild(kernel)
}

/**
 * @brief Copies a slot into host memory. The device is drained first so the
 * image is neither being written nor sampled while it moves to the transfer
 * layout and back.
 */
func (ft *FractalTargets) Readback(slot int) (*image.RGBA, error) {
	img := ft.targets[slot].Image
	if img == nil {
		return nil, fmt.Errorf("slot %d has no image: %w", slot, core.ErrImageCreate)
	}
	if err := checkResult(vk.DeviceWaitIdle(ft.context.Device.LogicalDevice), core.ErrDeviceLost, "vkDeviceWaitIdle"); err != nil {
		return nil, err
	}

	size := int(img.Width) * int(img.Height) * 4
	staging, err := BufferCreate(
		ft.context,
		vk.DeviceSize(size),
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(ft.context)

	pool := ft.context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(ft.context, pool)
	if err != nil {
		return nil, err
	}
	CmdTransition(cb.Handle, img.Handle, TransitionFragmentToTransferSrc)
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: img.Width, Height: img.Height, Depth: 1},
	}
	vk.CmdCopyImageToBuffer(cb.Handle, img.Handle, vk.ImageLayoutTransferSrcOptimal, staging.Handle, 1, []vk.BufferImageCopy{region})
	CmdTransition(cb.Handle, img.Handle, TransitionTransferSrcToFragment)
	if err := cb.EndSingleUse(ft.context, pool, ft.context.Device.GraphicsQueue); err != nil {
		return nil, err
	}

	pixels, err := staging.ReadData(ft.context, 0, size)
	if err != nil {
		return nil, err
	}
	return &image.RGBA{
		Pix:    pixels,
		Stride: int(img.Width) * 4,
		Rect:   image.Rect(0, 0, int(img.Width), int(img.Height)),
	}, nil
}

func (ft *FractalTargets) Destroy() {
	for i := range ft.targets {
		target := &ft.targets[i]
		ft.DestroyTarget(i)
		if target.CommandBuffer != nil {
			target.CommandBuffer.Free(ft.context, ft.context.Device.ComputeCommandPool)
			target.CommandBuffer = nil
		}
		if target.Fence != nil {
			target.Fence.Destroy()
			target.Fence = nil
		}
	}
	if ft.timestamps != nil {
		ft.timestamps.Destroy(ft.context)
		ft.timestamps = nil
	}
}
