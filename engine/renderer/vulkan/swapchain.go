package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	fmath "github.com/spaghettifunk/mandelbrot/engine/math"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// Transient multisampled target resolved into the swapchain image. Nil
	// when rendering single-sampled.
	ColorAttachment *VulkanImage

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// swapchainConfig is everything about a swapchain that is decided on the CPU.
type swapchainConfig struct {
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
}

func selectSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		// Preferred formats
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

func selectPresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	// FIFO is the only mode every implementation must support.
	return vk.PresentModeFifo
}

func selectExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	minExtent := capabilities.MinImageExtent
	maxExtent := capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  fmath.Clamp(width, minExtent.Width, maxExtent.Width),
		Height: fmath.Clamp(height, minExtent.Height, maxExtent.Height),
	}
}

func selectImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

/**
 * @brief Derives the swapchain configuration from the surface support and the
 * framebuffer size alone, so recreating with unchanged inputs yields the same
 * swapchain.
 */
func chooseSwapchainConfig(support *VulkanSwapchainSupportInfo, width, height uint32, vsync bool) swapchainConfig {
	return swapchainConfig{
		Format:      selectSurfaceFormat(support.Formats),
		PresentMode: selectPresentMode(support.PresentModes, vsync),
		Extent:      selectExtent(support.Capabilities, width, height),
		ImageCount:  selectImageCount(support.Capabilities),
	}
}

func SwapchainCreate(context *VulkanContext, width, height uint32, vsync bool) (*VulkanSwapchain, error) {
	// Simply create a new one.
	return createSwapchain(context, width, height, vsync)
}

// SwapchainRecreate destroys the old swapchain and builds a new one from
// freshly queried surface support.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width, height uint32, vsync bool) (*VulkanSwapchain, error) {
	vs.destroySwapchain(context)
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support
	return createSwapchain(context, width, height, vsync)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex returns core.ErrSwapchainOutOfDate when the
// surface no longer matches. A suboptimal swapchain is still used for this frame.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, vk.NullFence, &imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, core.ErrSwapchainOutOfDate
	case vk.Timeout, vk.NotReady:
		return 0, fmt.Errorf("vkAcquireNextImageKHR: %w", core.ErrFenceTimeout)
	default:
		return 0, checkResult(result, core.ErrAcquire, "vkAcquireNextImageKHR")
	}
}

// SwapchainPresent returns the image to the swapchain. Out-of-date and
// suboptimal both report core.ErrSwapchainOutOfDate so the caller rebuilds.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	var result vk.Result
	_ = context.Queues.SafeQueueCall(presentQueue, func() error {
		result = vk.QueuePresent(presentQueue, &presentInfo)
		return nil
	})
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return core.ErrSwapchainOutOfDate
	default:
		return checkResult(result, core.ErrPresent, "vkQueuePresentKHR")
	}
}

/**
 * @brief Creates one framebuffer per swapchain image for the render pass. The
 * MSAA attachment, when present, is shared by all of them.
 */
func (vs *VulkanSwapchain) CreateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.destroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, len(vs.Views))
	var msaaView vk.ImageView
	if vs.ColorAttachment != nil {
		msaaView = vs.ColorAttachment.View
	}
	for i, view := range vs.Views {
		attachments := framebufferAttachments(msaaView, view, renderpass.Multisampled())
		framebuffer, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, attachments)
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = framebuffer
	}
	return nil
}

func (vs *VulkanSwapchain) destroyFramebuffers(context *VulkanContext) {
	for _, framebuffer := range vs.Framebuffers {
		if framebuffer != nil {
			framebuffer.Destroy(context)
		}
	}
	vs.Framebuffers = nil
}

func createSwapchain(context *VulkanContext, width, height uint32, vsync bool) (*VulkanSwapchain, error) {
	device := context.Device
	support := device.SwapchainSupport
	if support == nil || len(support.Formats) == 0 {
		err := fmt.Errorf("surface reports no formats: %w", core.ErrSwapchainCreate)
		core.LogError(err.Error())
		return nil, err
	}
	config := chooseSwapchainConfig(support, width, height, vsync)
	if config.Extent.Width == 0 || config.Extent.Height == 0 {
		err := fmt.Errorf("zero swapchain extent %dx%d: %w", config.Extent.Width, config.Extent.Height, core.ErrSwapchainCreate)
		core.LogError(err.Error())
		return nil, err
	}

	swapchain := &VulkanSwapchain{
		ImageFormat: config.Format,
		PresentMode: config.PresentMode,
		Extent:      config.Extent,
	}

	// Swapchain create info
	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    config.ImageCount,
		ImageFormat:      config.Format.Format,
		ImageColorSpace:  config.Format.ColorSpace,
		ImageExtent:      config.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      config.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Setup the queue family indices
	if !device.QueueFamilies.Shared() {
		families := device.QueueFamilies.Unique()
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = uint32(len(families))
		swapchainCreateInfo.PQueueFamilyIndices = families
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if err := checkResult(vk.CreateSwapchain(device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchain.Handle), core.ErrSwapchainCreate, "vkCreateSwapchainKHR"); err != nil {
		return nil, err
	}

	// Start with a zero frame index.
	context.CurrentFrame = 0

	// Images
	if err := checkResult(vk.GetSwapchainImages(device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil), core.ErrSwapchainCreate, "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.destroySwapchain(context)
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if err := checkResult(vk.GetSwapchainImages(device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images), core.ErrSwapchainCreate, "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.destroySwapchain(context)
		return nil, err
	}

	// Views
	swapchain.Views = make([]vk.ImageView, 0, swapchain.ImageCount)
	for _, image := range swapchain.Images {
		view, err := createColorView(context, image, config.Format.Format)
		if err != nil {
			swapchain.destroySwapchain(context)
			return nil, err
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	// Multisampled color target
	if device.SampleCount != vk.SampleCount1Bit {
		colorAttachment, err := ImageCreate(context, ImageSpec{
			Width:      config.Extent.Width,
			Height:     config.Extent.Height,
			Format:     config.Format.Format,
			Usage:      vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit),
			Samples:    device.SampleCount,
			Memory:     vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
			CreateView: true,
		})
		if err != nil {
			swapchain.destroySwapchain(context)
			return nil, err
		}
		swapchain.ColorAttachment = colorAttachment
	}

	core.LogInfo("Swapchain created successfully (%dx%d, %d images).", config.Extent.Width, config.Extent.Height, swapchain.ImageCount)
	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	vs.destroyFramebuffers(context)

	if vs.ColorAttachment != nil {
		vs.ColorAttachment.Destroy(context)
		vs.ColorAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for _, view := range vs.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
