package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format
}

// ImageSpec describes a single-level 2D color image.
type ImageSpec struct {
	Width   uint32
	Height  uint32
	Format  vk.Format
	Usage   vk.ImageUsageFlags
	Samples vk.SampleCountFlagBits
	// Memory properties the backing allocation must have.
	Memory vk.MemoryPropertyFlags
	// Create a color view alongside the image.
	CreateView bool
}

func ImageCreate(context *VulkanContext, spec ImageSpec) (*VulkanImage, error) {
	if spec.Width == 0 || spec.Height == 0 {
		return nil, core.ErrImageCreate
	}
	samples := spec.Samples
	if samples == 0 {
		samples = vk.SampleCount1Bit
	}
	image := &VulkanImage{
		Width:  spec.Width,
		Height: spec.Height,
		Format: spec.Format,
	}

	// Creation info.
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  spec.Width,
			Height: spec.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        spec.Format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         spec.Usage,
		Samples:       samples,
		SharingMode:   vk.SharingModeExclusive,
	}

	device := context.Device.LogicalDevice
	if err := checkResult(vk.CreateImage(device, &imageCreateInfo, context.Allocator, &image.Handle), core.ErrImageCreate, "vkCreateImage"); err != nil {
		return nil, err
	}

	// Query memory requirements.
	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image.Handle, &memoryRequirements)

	memory, err := context.allocateMemory(memoryRequirements, spec.Memory)
	if err != nil {
		image.Destroy(context)
		return nil, err
	}
	image.Memory = memory

	// Bind the memory
	if err := checkResult(vk.BindImageMemory(device, image.Handle, image.Memory, 0), core.ErrMemoryAllocate, "vkBindImageMemory"); err != nil {
		image.Destroy(context)
		return nil, err
	}

	if spec.CreateView {
		if err := image.createView(context); err != nil {
			image.Destroy(context)
			return nil, err
		}
	}
	return image, nil
}

func (vi *VulkanImage) createView(context *VulkanContext) error {
	view, err := createColorView(context, vi.Handle, vi.Format)
	if err != nil {
		return err
	}
	vi.View = view
	return nil
}

func createColorView(context *VulkanContext, image vk.Image, format vk.Format) (vk.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorSubresourceRange(),
	}
	var view vk.ImageView
	if err := checkResult(vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &view), core.ErrImageViewCreate, "vkCreateImageView"); err != nil {
		return nil, err
	}
	return view, nil
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if vi.View != nil {
		vk.DestroyImageView(device, vi.View, context.Allocator)
		vi.View = nil
	}
	if vi.Memory != nil {
		vk.FreeMemory(device, vi.Memory, context.Allocator)
		vi.Memory = nil
	}
	if vi.Handle != nil {
		vk.DestroyImage(device, vi.Handle, context.Allocator)
		vi.Handle = nil
	}
}

func colorSubresourceRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

// LayoutTransition is one image memory barrier, minus the image.
type LayoutTransition struct {
	OldLayout vk.ImageLayout
	NewLayout vk.ImageLayout
	SrcStage  vk.PipelineStageFlagBits
	DstStage  vk.PipelineStageFlagBits
	SrcAccess vk.AccessFlagBits
	DstAccess vk.AccessFlagBits
}

var (
	// Fresh storage, before the first compute write.
	TransitionUndefinedToCompute = LayoutTransition{
		OldLayout: vk.ImageLayoutUndefined,
		NewLayout: vk.ImageLayoutGeneral,
		SrcStage:  vk.PipelineStageTopOfPipeBit,
		DstStage:  vk.PipelineStageComputeShaderBit,
		SrcAccess: 0,
		DstAccess: vk.AccessShaderWriteBit,
	}
	// A sampled image handed back to compute for a rewrite.
	TransitionFragmentToCompute = LayoutTransition{
		OldLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		NewLayout: vk.ImageLayoutGeneral,
		SrcStage:  vk.PipelineStageFragmentShaderBit,
		DstStage:  vk.PipelineStageComputeShaderBit,
		SrcAccess: vk.AccessShaderReadBit,
		DstAccess: vk.AccessShaderWriteBit,
	}
	// Finished compute output made visible to the fragment stage.
	TransitionComputeToFragment = TransitionFragmentToCompute.Reverse()
	// Never-computed storage parked in the sampled layout.
	TransitionUndefinedToFragment = LayoutTransition{
		OldLayout: vk.ImageLayoutUndefined,
		NewLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		SrcStage:  vk.PipelineStageTopOfPipeBit,
		DstStage:  vk.PipelineStageFragmentShaderBit,
		SrcAccess: 0,
		DstAccess: vk.AccessShaderReadBit,
	}
	// Sampled image read back on the host.
	TransitionFragmentToTransferSrc = LayoutTransition{
		OldLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		NewLayout: vk.ImageLayoutTransferSrcOptimal,
		SrcStage:  vk.PipelineStageFragmentShaderBit,
		DstStage:  vk.PipelineStageTransferBit,
		SrcAccess: vk.AccessShaderReadBit,
		DstAccess: vk.AccessTransferReadBit,
	}
	TransitionTransferSrcToFragment = TransitionFragmentToTransferSrc.Reverse()
)

// Reverse swaps the two sides of the transition.
func (t LayoutTransition) Reverse() LayoutTransition {
	return LayoutTransition{
		OldLayout: t.NewLayout,
		NewLayout: t.OldLayout,
		SrcStage:  t.DstStage,
		DstStage:  t.SrcStage,
		SrcAccess: t.DstAccess,
		DstAccess: t.SrcAccess,
	}
}

func (t LayoutTransition) barrier(image vk.Image) vk.ImageMemoryBarrier {
	return vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(t.SrcAccess),
		DstAccessMask:       vk.AccessFlags(t.DstAccess),
		OldLayout:           t.OldLayout,
		NewLayout:           t.NewLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    colorSubresourceRange(),
	}
}

// CmdTransition records the transition for image into cb.
func CmdTransition(cb vk.CommandBuffer, image vk.Image, t LayoutTransition) {
	vk.CmdPipelineBarrier(
		cb,
		vk.PipelineStageFlags(t.SrcStage),
		vk.PipelineStageFlags(t.DstStage),
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{t.barrier(image)},
	)
}
