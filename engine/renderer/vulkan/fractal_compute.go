package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/fractal"
)

// computePushConstants mirrors the push constant block of fractal.comp.
type computePushConstants struct {
	Min           [2]float32
	Max           [2]float32
	MaxIterations uint32
}

const computePushConstantSize = uint32(unsafe.Sizeof(computePushConstants{}))

// newComputePushConstants maps the screen rectangle through the camera map.
// The map carries no rotation, so the two mapped corners bound the viewport.
func newComputePushConstants(affine math.Mat3, maxIterations uint32) computePushConstants {
	bounds := affine.UnitBounds()
	return computePushConstants{
		Min:           [2]float32{bounds.Min.X, bounds.Min.Y},
		Max:           [2]float32{bounds.Max.X, bounds.Max.Y},
		MaxIterations: maxIterations,
	}
}

/**
 * @brief The escape-time kernel. It owns one storage image descriptor set per
 * fractal slot so binding an output never rewrites a set that an in-flight
 * dispatch still reads.
 */
type FractalComputeStage struct {
	context       *VulkanContext
	Pipeline      *VulkanPipeline
	Descriptors   *VulkanDescriptorSets
	MaxIterations uint32
}

func NewFractalComputeStage(context *VulkanContext, kernel []uint32, maxIterations uint32) (*FractalComputeStage, error) {
	stage := &FractalComputeStage{
		context:       context,
		MaxIterations: maxIterations,
	}
	descriptors, err := NewDescriptorSets(context, vk.DescriptorTypeStorageImage, vk.ShaderStageComputeBit, fractal.SlotCount)
	if err != nil {
		return nil, err
	}
	stage.Descriptors = descriptors

	if err := stage.buildPipeline(kernel); err != nil {
		stage.Destroy()
		return nil, err
	}
	return stage, nil
}

func (s *FractalComputeStage) buildPipeline(kernel []uint32) error {
	shader, err := NewShaderStage(s.context, "fractal.comp", kernel, vk.ShaderStageComputeBit)
	if err != nil {
		return err
	}
	// The module is only needed while the pipeline is built.
	defer shader.Destroy(s.context)

	ranges := []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		Offset:     0,
		Size:       computePushConstantSize,
	}}
	pipeline, err := NewComputePipeline(s.context, shader.ShaderStageCreateInfo, []vk.DescriptorSetLayout{s.Descriptors.Layout}, ranges)
	if err != nil {
		return err
	}
	s.Pipeline = pipeline
	return nil
}

// Rebuild swaps in a new kernel. The device must be idle. On failure the old
// pipeline stays in place.
func (s *FractalComputeStage) Rebuild(kernel []uint32) error {
	old := s.Pipeline
	if err := s.buildPipeline(kernel); err != nil {
		s.Pipeline = old
		return err
	}
	if old != nil {
		old.Destroy(s.context)
	}
	return nil
}

// BindOutput points the set of a slot at its image view.
func (s *FractalComputeStage) BindOutput(slot int, view vk.ImageView) {
	s.Descriptors.WriteImage(s.context, slot, view, vk.ImageLayoutGeneral, nil)
}

/**
 * @brief Records the dispatch that fills image with the fractal seen through
 * affine. Fresh images come from UNDEFINED, recycled ones from the sampled
 * layout. The image ends in SHADER_READ_ONLY for the display stage.
 */
func (s *FractalComputeStage) RecordDispatch(cb *VulkanCommandBuffer, slot int, image *VulkanImage, affine math.Mat3, initial bool) {
	if initial {
		CmdTransition(cb.Handle, image.Handle, TransitionUndefinedToCompute)
	} else {
		CmdTransition(cb.Handle, image.Handle, TransitionFragmentToCompute)
	}

	s.Pipeline.Bind(cb)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointCompute, s.Pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{s.Descriptors.Sets[slot]}, 0, nil)

	constants := newComputePushConstants(affine, s.MaxIterations)
	vk.CmdPushConstants(cb.Handle, s.Pipeline.PipelineLayout, vk.ShaderStageFlags(vk.ShaderStageComputeBit), 0, computePushConstantSize, unsafe.Pointer(&constants))

	vk.CmdDispatch(cb.Handle, math.DivCeil(image.Width, fractal.TileSize), math.DivCeil(image.Height, fractal.TileSize), 1)

	CmdTransition(cb.Handle, image.Handle, TransitionComputeToFragment)
}

// RecordInitialToFragment parks a never-computed image in the sampled layout.
func (s *FractalComputeStage) RecordInitialToFragment(cb *VulkanCommandBuffer, image *VulkanImage) {
	CmdTransition(cb.Handle, image.Handle, TransitionUndefinedToFragment)
}

func (s *FractalComputeStage) Destroy() {
	if s.Pipeline != nil {
		s.Pipeline.Destroy(s.context)
		s.Pipeline = nil
	}
	if s.Descriptors != nil {
		s.Descriptors.Destroy(s.context)
		s.Descriptors = nil
	}
}
