package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestInStageKeepsSentinel(t *testing.T) {
	err := InStage("compute", fmt.Errorf("loading kernel: %w", ErrShaderLoad))
	if !errors.Is(err, ErrShaderLoad) {
		t.Fatalf("expected ErrShaderLoad in chain, got %v", err)
	}
	if got := Stage(err); got != "compute" {
		t.Fatalf("stage = %q, want compute", got)
	}
	if want := "compute: loading kernel: shader load failed"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestInStageInnermostWins(t *testing.T) {
	err := InStage("frame", InStage("buffers", ErrQueueSubmit))
	if got := Stage(err); got != "buffers" {
		t.Fatalf("stage = %q, want buffers", got)
	}
}

func TestInStageNil(t *testing.T) {
	if InStage("frame", nil) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
	if Stage(ErrDeviceLost) != "" {
		t.Fatal("plain error should have no stage")
	}
}
