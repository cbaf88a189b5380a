package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

/**
 * @brief Creates a shader module from SPIR-V words and prepares the stage info
 * with "main" as the entry point.
 */
func NewShaderStage(context *VulkanContext, name string, code []uint32, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(code) == 0 {
		err := fmt.Errorf("shader '%s' has no code: %w", name, core.ErrShaderLoad)
		core.LogError(err.Error())
		return nil, err
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType: vk.StructureTypeShaderModuleCreateInfo,
		// Size in bytes, the code itself in words.
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}

	shaderStage := &VulkanShaderStage{}
	if err := checkResult(vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &shaderStage.Handle), core.ErrShaderLoad, "vkCreateShaderModule("+name+")"); err != nil {
		return nil, err
	}

	// Shader stage info
	shaderStage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: shaderStage.Handle,
		PName:  VulkanSafeString("main"),
	}
	return shaderStage, nil
}

// Destroy releases the shader module. Pipelines built from it stay valid.
func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}
