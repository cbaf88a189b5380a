package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

/**
 * @brief A descriptor set layout with a single binding plus the pool its sets
 * come from. The fractal stages each own one set per slot, so sets are
 * allocated once and rewritten in place.
 */
type VulkanDescriptorSets struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
	Sets   []vk.DescriptorSet
	// Type of the single binding.
	Type vk.DescriptorType
}

func NewDescriptorSets(context *VulkanContext, descriptorType vk.DescriptorType, stages vk.ShaderStageFlagBits, count int) (*VulkanDescriptorSets, error) {
	ds := &VulkanDescriptorSets{Type: descriptorType}
	device := context.Device.LogicalDevice

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  descriptorType,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	if err := checkResult(vk.CreateDescriptorSetLayout(device, &layoutInfo, context.Allocator, &ds.Layout), core.ErrDescriptorCreate, "vkCreateDescriptorSetLayout"); err != nil {
		return nil, err
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(count),
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            descriptorType,
			DescriptorCount: uint32(count),
		}},
	}
	if err := checkResult(vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &ds.Pool), core.ErrDescriptorCreate, "vkCreateDescriptorPool"); err != nil {
		ds.Destroy(context)
		return nil, err
	}

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = ds.Layout
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     ds.Pool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}
	ds.Sets = make([]vk.DescriptorSet, count)
	if err := checkResult(vk.AllocateDescriptorSets(device, &allocInfo, &ds.Sets[0]), core.ErrDescriptorCreate, "vkAllocateDescriptorSets"); err != nil {
		ds.Destroy(context)
		return nil, err
	}
	return ds, nil
}

// WriteImage points set index at view. Sampler is ignored for storage images.
func (ds *VulkanDescriptorSets) WriteImage(context *VulkanContext, index int, view vk.ImageView, layout vk.ImageLayout, sampler vk.Sampler) {
	imageInfo := vk.DescriptorImageInfo{
		ImageView:   view,
		ImageLayout: layout,
	}
	if ds.Type == vk.DescriptorTypeCombinedImageSampler {
		imageInfo.Sampler = sampler
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          ds.Sets[index],
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  ds.Type,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

// Destroy frees the pool, which releases its sets, then the layout.
func (ds *VulkanDescriptorSets) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if ds.Pool != nil {
		vk.DestroyDescriptorPool(device, ds.Pool, context.Allocator)
		ds.Pool = nil
	}
	ds.Sets = nil
	if ds.Layout != nil {
		vk.DestroyDescriptorSetLayout(device, ds.Layout, context.Allocator)
		ds.Layout = nil
	}
}

// NewSampler creates the nearest-filtered, border-clamped sampler the display
// stage reads fractal images through. Uncovered areas sample the border color.
func NewSampler(context *VulkanContext) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterNearest,
		MinFilter:               vk.FilterNearest,
		AddressModeU:            vk.SamplerAddressModeClampToBorder,
		AddressModeV:            vk.SamplerAddressModeClampToBorder,
		AddressModeW:            vk.SamplerAddressModeClampToBorder,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorFloatOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		MinLod:                  0,
		MaxLod:                  1,
	}
	var sampler vk.Sampler
	if err := checkResult(vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler), core.ErrDescriptorCreate, "vkCreateSampler"); err != nil {
		return nil, err
	}
	return sampler, nil
}
