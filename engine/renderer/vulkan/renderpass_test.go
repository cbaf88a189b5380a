package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestDescribeAttachmentsSingleSampled(t *testing.T) {
	layout := describeAttachments(vk.FormatB8g8r8a8Srgb, vk.SampleCount1Bit)
	if len(layout.attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(layout.attachments))
	}
	if layout.resolve != nil {
		t.Error("single-sampled pass has a resolve attachment")
	}
	if layout.attachments[0].FinalLayout != vk.ImageLayoutPresentSrc {
		t.Errorf("final layout = %v, want present", layout.attachments[0].FinalLayout)
	}
}

func TestDescribeAttachmentsMultisampled(t *testing.T) {
	layout := describeAttachments(vk.FormatB8g8r8a8Srgb, vk.SampleCount4Bit)
	if len(layout.attachments) != 2 {
		t.Fatalf("got %d attachments, want 2", len(layout.attachments))
	}
	msaa, resolve := layout.attachments[0], layout.attachments[1]
	if msaa.Samples != vk.SampleCount4Bit {
		t.Errorf("color samples = %v, want 4", msaa.Samples)
	}
	if resolve.Samples != vk.SampleCount1Bit || resolve.FinalLayout != vk.ImageLayoutPresentSrc {
		t.Errorf("resolve attachment = %+v, want single-sampled and presentable", resolve)
	}
	if layout.resolve == nil || layout.resolve.Attachment != 1 {
		t.Errorf("resolve reference = %+v, want attachment 1", layout.resolve)
	}
	if layout.color.Attachment != 0 {
		t.Errorf("color reference = %d, want 0", layout.color.Attachment)
	}
}

func TestMultisampled(t *testing.T) {
	if (&VulkanRenderpass{Samples: vk.SampleCount1Bit}).Multisampled() {
		t.Error("one sample reported as multisampled")
	}
	if !(&VulkanRenderpass{Samples: vk.SampleCount8Bit}).Multisampled() {
		t.Error("eight samples reported as single-sampled")
	}
}

func TestFramebufferAttachmentsOrder(t *testing.T) {
	var a, b vk.ImageView
	single := framebufferAttachments(a, b, false)
	if len(single) != 1 {
		t.Fatalf("single-sampled: %d views, want 1", len(single))
	}
	multi := framebufferAttachments(a, b, true)
	if len(multi) != 2 {
		t.Fatalf("multisampled: %d views, want 2", len(multi))
	}
}
