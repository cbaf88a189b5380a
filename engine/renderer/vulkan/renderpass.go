package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

type VulkanRenderpass struct {
	Handle     vk.RenderPass
	X, Y, W, H float32
	R, G, B, A float32
	// Samples of the color attachment. Above one bit a resolve attachment
	// receives the result.
	Samples vk.SampleCountFlagBits
}

// Multisampled reports whether the pass renders into a separate MSAA target.
func (vr *VulkanRenderpass) Multisampled() bool {
	return vr.Samples != vk.SampleCount1Bit
}

type renderpassLayout struct {
	attachments []vk.AttachmentDescription
	color       vk.AttachmentReference
	resolve     *vk.AttachmentReference
}

/**
 * @brief Describes the attachments of the main pass. With one sample the
 * swapchain image is the only attachment. With more, attachment 0 is the
 * transient MSAA image and attachment 1 the swapchain image it resolves into.
 */
func describeAttachments(format vk.Format, samples vk.SampleCountFlagBits) renderpassLayout {
	if samples == vk.SampleCount1Bit {
		return renderpassLayout{
			attachments: []vk.AttachmentDescription{{
				Format:         format,
				Samples:        vk.SampleCount1Bit,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpStore,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpDontCare,
				InitialLayout:  vk.ImageLayoutUndefined,  // Do not expect any particular layout before render pass starts.
				FinalLayout:    vk.ImageLayoutPresentSrc, // Transitioned to after the render pass
			}},
			color: vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
		}
	}
	return renderpassLayout{
		attachments: []vk.AttachmentDescription{
			{
				Format:         format,
				Samples:        samples,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpStore,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpDontCare,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
			},
			{
				Format:         format,
				Samples:        vk.SampleCount1Bit,
				LoadOp:         vk.AttachmentLoadOpDontCare,
				StoreOp:        vk.AttachmentStoreOpStore,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpDontCare,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutPresentSrc,
			},
		},
		color:   vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
		resolve: &vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutColorAttachmentOptimal},
	}
}

func RenderpassCreate(context *VulkanContext, format vk.Format, samples vk.SampleCountFlagBits, x, y, w, h float32, clear [4]float32) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		X:       x,
		Y:       y,
		W:       w,
		H:       h,
		R:       clear[0],
		G:       clear[1],
		B:       clear[2],
		A:       clear[3],
		Samples: samples,
	}

	layout := describeAttachments(format, samples)

	// Main subpass
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{layout.color},
	}
	// Attachments used for multisampling colour attachments
	if layout.resolve != nil {
		subpass.PResolveAttachments = []vk.AttachmentReference{*layout.resolve}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	// Render pass create.
	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(layout.attachments)),
		PAttachments:    layout.attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if err := checkResult(vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &handle), core.ErrPipelineCreate, "vkCreateRenderPass"); err != nil {
		return nil, err
	}
	outRenderpass.Handle = handle
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{vr.R, vr.G, vr.B, vr.A})

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{
				X: int32(vr.X),
				Y: int32(vr.Y),
			},
			Extent: vk.Extent2D{
				Width:  uint32(vr.W),
				Height: uint32(vr.H),
			},
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (vr *VulkanRenderpass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
