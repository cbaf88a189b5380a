package renderer

import (
	"image"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/vulkan"
)

// RendererBackend is what the frontend needs from a GPU backend.
type RendererBackend interface {
	Initialize(config vulkan.RendererConfig, initialView math.Mat3) error
	Shutdown() error
	Resized(width, height uint32)
	DrawFrame(view math.Mat3) error
	Screenshot() (*image.RGBA, error)
	ReloadShader(name string, code []uint32) error
	GPUTimes() (render time.Duration, compute time.Duration)
}
