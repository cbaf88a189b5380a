package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestTransitionsChain(t *testing.T) {
	// The slot lifecycle: allocate, compute, display, recompute, display.
	chain := []LayoutTransition{
		TransitionUndefinedToCompute,
		TransitionComputeToFragment,
		TransitionFragmentToCompute,
		TransitionComputeToFragment,
	}
	layout := vk.ImageLayoutUndefined
	for i, tr := range chain {
		if tr.OldLayout != layout {
			t.Fatalf("step %d starts from %v, image is in %v", i, tr.OldLayout, layout)
		}
		layout = tr.NewLayout
	}
	if layout != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("final layout = %v, want shader read-only", layout)
	}
}

func TestTransitionReverse(t *testing.T) {
	tests := []struct {
		name string
		in   LayoutTransition
		want LayoutTransition
	}{
		{
			"back to fragment after compute",
			TransitionComputeToFragment,
			LayoutTransition{
				OldLayout: vk.ImageLayoutGeneral,
				NewLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				SrcStage:  vk.PipelineStageComputeShaderBit,
				DstStage:  vk.PipelineStageFragmentShaderBit,
				SrcAccess: vk.AccessShaderWriteBit,
				DstAccess: vk.AccessShaderReadBit,
			},
		},
		{
			"back to fragment after readback",
			TransitionTransferSrcToFragment,
			LayoutTransition{
				OldLayout: vk.ImageLayoutTransferSrcOptimal,
				NewLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				SrcStage:  vk.PipelineStageTransferBit,
				DstStage:  vk.PipelineStageFragmentShaderBit,
				SrcAccess: vk.AccessTransferReadBit,
				DstAccess: vk.AccessShaderReadBit,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.in != tt.want {
				t.Errorf("got %+v, want %+v", tt.in, tt.want)
			}
			if got := tt.in.Reverse().Reverse(); got != tt.in {
				t.Errorf("double reverse changed the transition: %+v", got)
			}
		})
	}
}

func TestTransitionBarrier(t *testing.T) {
	b := TransitionComputeToFragment.barrier(nil)
	if b.OldLayout != vk.ImageLayoutGeneral || b.NewLayout != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("layouts = %v -> %v", b.OldLayout, b.NewLayout)
	}
	if b.SrcAccessMask != vk.AccessFlags(vk.AccessShaderWriteBit) || b.DstAccessMask != vk.AccessFlags(vk.AccessShaderReadBit) {
		t.Errorf("access = %v -> %v", b.SrcAccessMask, b.DstAccessMask)
	}
	if b.SubresourceRange.LevelCount != 1 || b.SubresourceRange.LayerCount != 1 {
		t.Errorf("subresource range = %+v, want one level and layer", b.SubresourceRange)
	}
}
