package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/fractal"
)

// displayPushConstantSize is a mat3 with vec4-padded columns.
const displayPushConstantSize = uint32(12 * 4)

/**
 * @brief Draws the front fractal image as a full-screen quad, shifted by the
 * tween map so that camera motion shows before the next compute lands.
 */
type FractalDisplayStage struct {
	context      *VulkanContext
	Pipeline     *VulkanPipeline
	Descriptors  *VulkanDescriptorSets
	Sampler      vk.Sampler
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer

	// Kept so the pipeline can be rebuilt for a new render pass.
	vertexCode   []uint32
	fragmentCode []uint32
}

func NewFractalDisplayStage(context *VulkanContext, renderpass *VulkanRenderpass, vertexCode, fragmentCode []uint32) (*FractalDisplayStage, error) {
	stage := &FractalDisplayStage{
		context:      context,
		vertexCode:   vertexCode,
		fragmentCode: fragmentCode,
	}

	var err error
	if stage.Descriptors, err = NewDescriptorSets(context, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit, fractal.SlotCount); err != nil {
		stage.Destroy()
		return nil, err
	}
	if stage.Sampler, err = NewSampler(context); err != nil {
		stage.Destroy()
		return nil, err
	}
	if err := stage.buildPipeline(renderpass); err != nil {
		stage.Destroy()
		return nil, err
	}

	// Upload the quad.
	if stage.VertexBuffer, err = BufferCreateDeviceLocal(context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), quadVertexBytes()); err != nil {
		stage.Destroy()
		return nil, err
	}
	if stage.IndexBuffer, err = BufferCreateDeviceLocal(context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), quadIndexBytes()); err != nil {
		stage.Destroy()
		return nil, err
	}
	return stage, nil
}

func (s *FractalDisplayStage) buildPipeline(renderpass *VulkanRenderpass) error {
	vertex, err := NewShaderStage(s.context, "fractal.vert", s.vertexCode, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vertex.Destroy(s.context)
	fragment, err := NewShaderStage(s.context, "fractal.frag", s.fragmentCode, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer fragment.Destroy(s.context)

	pipeline, err := NewGraphicsPipeline(s.context, &VulkanPipelineConfig{
		Renderpass:           renderpass,
		Stride:               quadVertexStride,
		Attributes:           quadAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{s.Descriptors.Layout},
		Stages:               []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
		CullMode:             vk.CullModeNone,
		PushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       displayPushConstantSize,
		}},
	})
	if err != nil {
		return err
	}
	s.Pipeline = pipeline
	return nil
}

/**
 * @brief Replaces the graphics pipeline. Nil code keeps the current shader.
 * The device must be idle. On failure the old pipeline and code stay in place.
 */
func (s *FractalDisplayStage) Rebuild(renderpass *VulkanRenderpass, vertexCode, fragmentCode []uint32) error {
	oldPipeline, oldVertex, oldFragment := s.Pipeline, s.vertexCode, s.fragmentCode
	if vertexCode != nil {
		s.vertexCode = vertexCode
	}
	if fragmentCode != nil {
		s.fragmentCode = fragmentCode
	}
	if err := s.buildPipeline(renderpass); err != nil {
		s.Pipeline, s.vertexCode, s.fragmentCode = oldPipeline, oldVertex, oldFragment
		return err
	}
	if oldPipeline != nil {
		oldPipeline.Destroy(s.context)
	}
	return nil
}

// UpdateSlot points the set of a slot at its freshly computed view.
func (s *FractalDisplayStage) UpdateSlot(slot int, view vk.ImageView) {
	s.Descriptors.WriteImage(s.context, slot, view, vk.ImageLayoutShaderReadOnlyOptimal, s.Sampler)
}

// Draw records the quad sampling slot. It must run inside the render pass.
func (s *FractalDisplayStage) Draw(cb *VulkanCommandBuffer, slot int, tween math.Mat3) {
	s.Pipeline.Bind(cb)

	constants := tween.Padded()
	vk.CmdPushConstants(cb.Handle, s.Pipeline.PipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, displayPushConstantSize, unsafe.Pointer(&constants[0]))

	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, s.Pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{s.Descriptors.Sets[slot]}, 0, nil)
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{s.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb.Handle, s.IndexBuffer.Handle, 0, vk.IndexTypeUint16)
	vk.CmdDrawIndexed(cb.Handle, uint32(len(quadIndices)), 1, 0, 0, 0)
}

func (s *FractalDisplayStage) Destroy() {
	if s.VertexBuffer != nil {
		s.VertexBuffer.Destroy(s.context)
		s.VertexBuffer = nil
	}
	if s.IndexBuffer != nil {
		s.IndexBuffer.Destroy(s.context)
		s.IndexBuffer = nil
	}
	if s.Pipeline != nil {
		s.Pipeline.Destroy(s.context)
		s.Pipeline = nil
	}
	if s.Sampler != nil {
		vk.DestroySampler(s.context.Device.LogicalDevice, s.Sampler, s.context.Allocator)
		s.Sampler = nil
	}
	if s.Descriptors != nil {
		s.Descriptors.Destroy(s.context)
		s.Descriptors = nil
	}
}
