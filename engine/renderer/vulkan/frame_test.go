package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestFrameSlotAdvance(t *testing.T) {
	f := &FrameSlot{}
	for _, next := range []FrameState{
		FRAME_STATE_ACQUIRED,
		FRAME_STATE_SUBMITTED,
		FRAME_STATE_PRESENTED,
		FRAME_STATE_IDLE,
		FRAME_STATE_ACQUIRED,
	} {
		if !f.advance(next) {
			t.Fatalf("legal move to %s rejected", next)
		}
	}
}

func TestFrameSlotIllegalMoves(t *testing.T) {
	tests := []struct {
		from, to FrameState
	}{
		{FRAME_STATE_IDLE, FRAME_STATE_SUBMITTED},
		{FRAME_STATE_IDLE, FRAME_STATE_PRESENTED},
		{FRAME_STATE_ACQUIRED, FRAME_STATE_PRESENTED},
		{FRAME_STATE_SUBMITTED, FRAME_STATE_ACQUIRED},
	}
	for _, tt := range tests {
		f := &FrameSlot{State: tt.from}
		if f.advance(tt.to) {
			t.Errorf("%s -> %s accepted", tt.from, tt.to)
		}
		if f.State != tt.to {
			t.Errorf("state = %s, want %s after the move", f.State, tt.to)
		}
	}
}

func TestFrameSlotAbandon(t *testing.T) {
	for _, from := range []FrameState{FRAME_STATE_ACQUIRED, FRAME_STATE_SUBMITTED, FRAME_STATE_PRESENTED} {
		f := &FrameSlot{State: from}
		if !f.advance(FRAME_STATE_IDLE) {
			t.Errorf("%s -> IDLE rejected", from)
		}
	}
}

func TestFrameStateString(t *testing.T) {
	if FRAME_STATE_SUBMITTED.String() != "SUBMITTED" {
		t.Errorf("String() = %q", FRAME_STATE_SUBMITTED.String())
	}
}

func TestInstanceExtensionsDeduplicates(t *testing.T) {
	exts := instanceExtensions([]string{vk.KhrSurfaceExtensionName, "VK_KHR_xcb_surface"}, "linux", true)
	seen := map[string]int{}
	for _, e := range exts {
		seen[e]++
	}
	if seen[vk.KhrSurfaceExtensionName] != 1 {
		t.Errorf("surface extension listed %d times", seen[vk.KhrSurfaceExtensionName])
	}
	if seen[vk.ExtDebugReportExtensionName] != 1 {
		t.Errorf("debug report extension missing with validation on: %v", exts)
	}
	if seen["VK_KHR_portability_enumeration"] != 0 {
		t.Errorf("portability extension requested on linux: %v", exts)
	}

	mac := instanceExtensions(nil, "darwin", false)
	found := false
	for _, e := range mac {
		found = found || e == "VK_KHR_portability_enumeration"
		if e == vk.ExtDebugReportExtensionName {
			t.Error("debug report requested with validation off")
		}
	}
	if !found {
		t.Errorf("portability extension missing on darwin: %v", mac)
	}
}
