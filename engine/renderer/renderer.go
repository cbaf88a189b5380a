package renderer

import (
	"errors"
	"image"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/platform"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
)

// Renderer is the frontend the engine talks to. It logs failures once and
// tells recoverable errors apart from fatal ones.
type Renderer struct {
	backend RendererBackend
}

func New(rendererType RendererType, p *platform.Platform) (*Renderer, error) {
	switch rendererType {
	case Vulkan:
		return &Renderer{backend: vulkan.New(p)}, nil
	}
	return nil, core.InStage("bootstrap", errors.New("unsupported renderer type"))
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(config vulkan.RendererConfig, initialView math.Mat3) error {
	if err := r.backend.Initialize(config, initialView); err != nil {
		core.LogError("renderer initialization failed: %s", err)
		return err
	}
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) {
	r.backend.Resized(width, height)
}

/**
 * @brief Renders one frame. A fence timeout is logged and swallowed so the
 * loop can try again next tick; anything else is returned as fatal.
 */
func (r *Renderer) DrawFrame(view math.Mat3) error {
	err := r.backend.DrawFrame(view)
	if err == nil {
		return nil
	}
	if Recoverable(err) {
		core.LogWarn("frame skipped: %s", err)
		return nil
	}
	core.LogError("DrawFrame failed in stage '%s': %s", core.Stage(err), err)
	return err
}

func (r *Renderer) Screenshot() (*image.RGBA, error) {
	return r.backend.Screenshot()
}

// ReloadShader swaps in a recompiled shader. A kernel that fails to build is
// reported and the renderer keeps its previous pipeline state.
func (r *Renderer) ReloadShader(name string, code []uint32) error {
	if err := r.backend.ReloadShader(name, code); err != nil {
		core.LogError("reloading shader '%s' failed: %s", name, err)
		return err
	}
	core.LogInfo("Shader '%s' reloaded.", name)
	return nil
}

func (r *Renderer) GPUTimes() (time.Duration, time.Duration) {
	return r.backend.GPUTimes()
}

// Recoverable reports whether err leaves the renderer in a usable state.
func Recoverable(err error) bool {
	return errors.Is(err, core.ErrFenceTimeout) || errors.Is(err, core.ErrSwapchainOutOfDate)
}
