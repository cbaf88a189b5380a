package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

const portabilitySubsetExtensionName = "VK_KHR_portability_subset"

// QueueFamilyIndices names the queue families the renderer submits to. Compute
// work runs on a queue of the graphics family.
type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32
}

// Shared reports whether graphics and present use the same family.
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

type VulkanDevice struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	SwapchainSupport *VulkanSwapchainSupportInfo
	QueueFamilies    QueueFamilyIndices

	// Number of queues available in the graphics family.
	GraphicsQueueCount uint32
	// Queue index inside the graphics family used for compute.
	ComputeQueueIndex uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	ComputeQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool
	ComputeCommandPool  vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	// Nanoseconds per timestamp tick. Zero disables GPU timings.
	TimestampPeriod float32
	// Sample count of the color attachment.
	SampleCount vk.SampleCountFlagBits
}

type queueFamilyCaps struct {
	Graphics   bool
	Compute    bool
	Present    bool
	Timestamps bool
	QueueCount uint32
}

/**
 * @brief Chooses the graphics and present families. A family that can do
 * graphics, compute and present at once wins; otherwise graphics+compute is
 * paired with any present-capable family.
 */
func pickQueueFamilies(families []queueFamilyCaps) (QueueFamilyIndices, bool) {
	for i, f := range families {
		if f.Graphics && f.Compute && f.Present && f.QueueCount > 0 {
			return QueueFamilyIndices{Graphics: uint32(i), Present: uint32(i)}, true
		}
	}
	graphics, present := -1, -1
	for i, f := range families {
		if graphics == -1 && f.Graphics && f.Compute && f.QueueCount > 0 {
			graphics = i
		}
		if present == -1 && f.Present && f.QueueCount > 0 {
			present = i
		}
	}
	if graphics == -1 || present == -1 {
		return QueueFamilyIndices{}, false
	}
	return QueueFamilyIndices{Graphics: uint32(graphics), Present: uint32(present)}, true
}

// computeQueueIndex uses a second queue of the graphics family when there is
// one so compute and graphics submissions can overlap.
func computeQueueIndex(graphicsQueueCount uint32) uint32 {
	if graphicsQueueCount >= 2 {
		return 1
	}
	return 0
}

// pickSampleCount returns the highest sample count supported by the flags that
// does not exceed limit.
func pickSampleCount(supported vk.SampleCountFlags, limit int) vk.SampleCountFlagBits {
	candidates := []struct {
		count int
		bit   vk.SampleCountFlagBits
	}{
		{8, vk.SampleCount8Bit},
		{4, vk.SampleCount4Bit},
		{2, vk.SampleCount2Bit},
	}
	for _, c := range candidates {
		if c.count <= limit && vk.SampleCountFlagBits(supported)&c.bit != 0 {
			return c.bit
		}
	}
	return vk.SampleCount1Bit
}

func DeviceCreate(context *VulkanContext, sampleLimit int) error {
	if err := SelectPhysicalDevice(context, sampleLimit); err != nil {
		return err
	}
	device := context.Device

	core.LogInfo("Creating logical device...")

	graphicsQueues := uint32(1)
	if device.GraphicsQueueCount >= 2 {
		graphicsQueues = 2
	}
	queueCreateInfos := []vk.DeviceQueueCreateInfo{
		{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: device.QueueFamilies.Graphics,
			QueueCount:       graphicsQueues,
			PQueuePriorities: []float32{1.0, 1.0}[:graphicsQueues],
		},
	}
	// NOTE: Do not create additional queues for shared indices.
	if !device.QueueFamilies.Shared() {
		queueCreateInfos = append(queueCreateInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: device.QueueFamilies.Present,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	available, err := deviceExtensions(device.PhysicalDevice)
	if err != nil {
		return err
	}
	if available[portabilitySubsetExtensionName] {
		core.LogInfo("Adding required extension '%s'.", portabilitySubsetExtensionName)
		extensionNames = append(extensionNames, portabilitySubsetExtensionName)
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	var logical vk.Device
	if err := checkResult(vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logical), core.ErrDeviceSelect, "vkCreateDevice"); err != nil {
		return err
	}
	device.LogicalDevice = logical
	core.LogInfo("Logical device created.")

	// Get queues.
	device.ComputeQueueIndex = computeQueueIndex(device.GraphicsQueueCount)
	vk.GetDeviceQueue(logical, device.QueueFamilies.Graphics, 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(logical, device.QueueFamilies.Present, 0, &device.PresentQueue)
	vk.GetDeviceQueue(logical, device.QueueFamilies.Graphics, device.ComputeQueueIndex, &device.ComputeQueue)
	core.LogInfo("Queues obtained (compute on queue %d of family %d).", device.ComputeQueueIndex, device.QueueFamilies.Graphics)

	// Both pools live on the graphics family; compute gets its own so
	// resetting one never touches the other's buffers.
	for _, pool := range []*vk.CommandPool{&device.GraphicsCommandPool, &device.ComputeCommandPool} {
		poolCreateInfo := vk.CommandPoolCreateInfo{
			SType:            vk.StructureTypeCommandPoolCreateInfo,
			QueueFamilyIndex: device.QueueFamilies.Graphics,
			Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		}
		if err := checkResult(vk.CreateCommandPool(logical, &poolCreateInfo, context.Allocator, pool), core.ErrCommandBuffer, "vkCreateCommandPool"); err != nil {
			return err
		}
	}
	core.LogInfo("Command pools created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}
	// Unset queues
	device.GraphicsQueue = nil
	device.PresentQueue = nil
	device.ComputeQueue = nil

	if device.LogicalDevice != nil {
		core.LogInfo("Destroying command pools...")
		if device.ComputeCommandPool != nil {
			vk.DestroyCommandPool(device.LogicalDevice, device.ComputeCommandPool, context.Allocator)
			device.ComputeCommandPool = nil
		}
		if device.GraphicsCommandPool != nil {
			vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, context.Allocator)
			device.GraphicsCommandPool = nil
		}

		// Destroy logical device
		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = nil
}

func deviceExtensions(physicalDevice vk.PhysicalDevice) (map[string]bool, error) {
	var count uint32
	if err := checkResult(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, nil), core.ErrDeviceSelect, "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	properties := make([]vk.ExtensionProperties, count)
	if count > 0 {
		if err := checkResult(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &count, properties), core.ErrDeviceSelect, "vkEnumerateDeviceExtensionProperties"); err != nil {
			return nil, err
		}
	}
	out := make(map[string]bool, count)
	for i := range properties {
		properties[i].Deref()
		out[vk.ToString(properties[i].ExtensionName[:])] = true
	}
	return out, nil
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	supportInfo := &VulkanSwapchainSupportInfo{}

	// Surface capabilities
	if err := checkResult(vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities), core.ErrSwapchainCreate, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return nil, err
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	// Surface formats
	var formatCount uint32
	if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil), core.ErrSwapchainCreate, "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return nil, err
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if err := checkResult(vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats), core.ErrSwapchainCreate, "vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
			return nil, err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	var modeCount uint32
	if err := checkResult(vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil), core.ErrSwapchainCreate, "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return nil, err
	}
	if modeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, modeCount)
		if err := checkResult(vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, supportInfo.PresentModes), core.ErrSwapchainCreate, "vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
			return nil, err
		}
	}
	return supportInfo, nil
}

func SelectPhysicalDevice(context *VulkanContext, sampleLimit int) error {
	var physicalDeviceCount uint32
	if err := checkResult(vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil), core.ErrDeviceSelect, "vkEnumeratePhysicalDevices"); err != nil {
		return err
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found: %w", core.ErrDeviceSelect)
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if err := checkResult(vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices), core.ErrDeviceSelect, "vkEnumeratePhysicalDevices"); err != nil {
		return err
	}

	var chosen *VulkanDevice
	for _, candidate := range physicalDevices {
		device, ok := evaluatePhysicalDevice(candidate, context.Surface)
		if !ok {
			continue
		}
		// keep the first match but let a discrete GPU replace an integrated one
		if chosen == nil || (chosen.Properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu &&
			device.Properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu) {
			chosen = device
		}
	}

	// Ensure a device was selected
	if chosen == nil {
		err := fmt.Errorf("no physical devices were found which meet the requirements: %w", core.ErrDeviceSelect)
		core.LogError(err.Error())
		return err
	}

	chosen.SampleCount = pickSampleCount(chosen.Properties.Limits.FramebufferColorSampleCounts, sampleLimit)
	context.Device = chosen
	logDevice(chosen)
	core.LogInfo("Physical device selected.")
	return nil
}

func evaluatePhysicalDevice(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanDevice, bool) {
	device := &VulkanDevice{PhysicalDevice: physicalDevice}

	vk.GetPhysicalDeviceProperties(physicalDevice, &device.Properties)
	device.Properties.Deref()
	device.Properties.Limits.Deref()
	vk.GetPhysicalDeviceFeatures(physicalDevice, &device.Features)
	device.Features.Deref()
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &device.Memory)
	device.Memory.Deref()

	name := vk.ToString(device.Properties.DeviceName[:])

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, queueFamilies)

	caps := make([]queueFamilyCaps, queueFamilyCount)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		flags := vk.QueueFlagBits(queueFamilies[i].QueueFlags)

		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, uint32(i), surface, &supportsPresent); res != vk.Success {
			core.LogWarn("Device '%s' failed the present support query for family %d.", name, i)
		}
		caps[i] = queueFamilyCaps{
			Graphics:   flags&vk.QueueGraphicsBit != 0,
			Compute:    flags&vk.QueueComputeBit != 0,
			Present:    supportsPresent == vk.True,
			Timestamps: queueFamilies[i].TimestampValidBits > 0,
			QueueCount: queueFamilies[i].QueueCount,
		}
	}

	indices, ok := pickQueueFamilies(caps)
	if !ok {
		core.LogInfo("Device '%s' lacks graphics+compute or present queues, skipping.", name)
		return nil, false
	}
	device.QueueFamilies = indices
	device.GraphicsQueueCount = caps[indices.Graphics].QueueCount

	extensions, err := deviceExtensions(physicalDevice)
	if err != nil || !extensions[vk.KhrSwapchainExtensionName] {
		core.LogInfo("Required extension not found: '%s', skipping device '%s'.", vk.KhrSwapchainExtensionName, name)
		return nil, false
	}

	// Query swapchain support.
	support, err := DeviceQuerySwapchainSupport(physicalDevice, surface)
	if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		core.LogInfo("Required swapchain support not present, skipping device '%s'.", name)
		return nil, false
	}
	device.SwapchainSupport = support

	if caps[indices.Graphics].Timestamps && device.Properties.Limits.TimestampPeriod > 0 {
		device.TimestampPeriod = device.Properties.Limits.TimestampPeriod
	} else {
		core.LogWarn("Device '%s' has no usable timestamps, GPU timings disabled.", name)
	}
	return device, true
}

func logDevice(device *VulkanDevice) {
	properties := device.Properties
	core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
	// GPU type, etc.
	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}

	core.LogInfo(
		"GPU Driver version: %d.%d.%d",
		vk.Version(properties.DriverVersion).Major(),
		vk.Version(properties.DriverVersion).Minor(),
		vk.Version(properties.DriverVersion).Patch(),
	)

	// Vulkan API version.
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version(properties.ApiVersion).Major(),
		vk.Version(properties.ApiVersion).Minor(),
		vk.Version(properties.ApiVersion).Patch(),
	)

	// Memory information
	for j := 0; j < int(device.Memory.MemoryHeapCount); j++ {
		device.Memory.MemoryHeaps[j].Deref()
		memorySizeGib := float64(device.Memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if vk.MemoryHeapFlagBits(device.Memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
		}
	}

	core.LogDebug("Graphics Family Index: %d (%d queues)", device.QueueFamilies.Graphics, device.GraphicsQueueCount)
	core.LogDebug("Present Family Index:  %d", device.QueueFamilies.Present)
	core.LogDebug("Sample count: %d", int(device.SampleCount))
}
