package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:  size,
		Usage: usage,
	}
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	device := context.Device.LogicalDevice
	if err := checkResult(vk.CreateBuffer(device, &bufferInfo, context.Allocator, &buffer.Handle), core.ErrBufferCreate, "vkCreateBuffer"); err != nil {
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer.Handle, &requirements)
	memory, err := context.allocateMemory(requirements, properties)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if err := checkResult(vk.BindBufferMemory(device, buffer.Handle, buffer.Memory, 0), core.ErrMemoryAllocate, "vkBindBufferMemory"); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if vb.Memory != nil {
		vk.FreeMemory(device, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(device, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
}

// LoadData copies data into host-visible memory at offset.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset vk.DeviceSize, data []byte) error {
	size := vk.DeviceSize(len(data))
	var mapped unsafe.Pointer
	if err := checkResult(vk.MapMemory(context.Device.LogicalDevice, vb.Memory, offset, size, 0, &mapped), core.ErrMemoryAllocate, "vkMapMemory"); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(mapped), len(data)), data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// ReadData copies size bytes of host-visible memory out of the buffer.
func (vb *VulkanBuffer) ReadData(context *VulkanContext, offset vk.DeviceSize, size int) ([]byte, error) {
	var mapped unsafe.Pointer
	if err := checkResult(vk.MapMemory(context.Device.LogicalDevice, vb.Memory, offset, vk.DeviceSize(size), 0, &mapped), core.ErrMemoryAllocate, "vkMapMemory"); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapped), size))
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return out, nil
}

/**
 * @brief Creates a device-local buffer and fills it through a staging buffer
 * on the graphics queue.
 */
func BufferCreateDeviceLocal(context *VulkanContext, usage vk.BufferUsageFlags, data []byte) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	staging, err := BufferCreate(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}

	buffer, err := BufferCreate(
		context,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}

	pool := context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	vk.CmdCopyBuffer(cb.Handle, staging.Handle, buffer.Handle, 1, []vk.BufferCopy{{Size: size}})
	if err := cb.EndSingleUse(context, pool, context.Device.GraphicsQueue); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}
