package vulkan

import (
	"testing"

	"github.com/spaghettifunk/mandelbrot/engine/math"
)

func TestComputePushConstantSize(t *testing.T) {
	// vec2 min, vec2 max, uint iterations in the kernel's std430 block.
	if computePushConstantSize != 20 {
		t.Errorf("push constant size = %d, want 20", computePushConstantSize)
	}
}

func TestNewComputePushConstants(t *testing.T) {
	tests := []struct {
		name     string
		affine   math.Mat3
		min, max [2]float32
	}{
		{
			name:   "identity",
			affine: math.NewMat3Identity(),
			min:    [2]float32{-1, -1},
			max:    [2]float32{1, 1},
		},
		{
			name:   "scaled",
			affine: math.NewMat3Scale2D(math.NewVec2(2, 0.5)),
			min:    [2]float32{-2, -0.5},
			max:    [2]float32{2, 0.5},
		},
		{
			name:   "translated",
			affine: math.NewMat3Translation2D(math.NewVec2(-0.5, 0.25)),
			min:    [2]float32{-1.5, -0.75},
			max:    [2]float32{0.5, 1.25},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := newComputePushConstants(tt.affine, 256)
			if pc.Min != tt.min || pc.Max != tt.max {
				t.Errorf("bounds = %v..%v, want %v..%v", pc.Min, pc.Max, tt.min, tt.max)
			}
			if pc.MaxIterations != 256 {
				t.Errorf("iterations = %d, want 256", pc.MaxIterations)
			}
		})
	}
}
