package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/assets"
	"github.com/spaghettifunk/mandelbrot/engine/assets/loaders"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/platform"
	"github.com/spaghettifunk/mandelbrot/engine/renderer"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/components"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	config       ApplicationConfig
	session      *core.Session
	quit         *atomic.Bool

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32

	events       *core.EventSystem
	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	camera       *components.AffineCamera
	screenshots  *loaders.ImageWriter

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64

	// Set by key events, consumed at the start of the next tick.
	resetRequested      bool
	screenshotRequested bool
}

// New builds an engine for config. The loop stops on the next tick once quit
// is set, which lets a signal handler end the run.
func New(config ApplicationConfig, session *core.Session, quit *atomic.Bool) (*Engine, error) {
	events := core.NewEventSystem()
	p, err := platform.New(events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager(config.ShaderDir)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r, err := renderer.New(renderer.Vulkan, p)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	if quit == nil {
		quit = &atomic.Bool{}
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       config,
		session:      session,
		quit:         quit,
		events:       events,
		platform:     p,
		assetManager: am,
		renderer:     r,
		screenshots:  &loaders.ImageWriter{Dir: config.ScreenshotDir},
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		isRunning:    true,
		width:        config.Width,
		height:       config.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_MOUSE_WHEEL, e, e.onScroll)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(e.config.Name, e.config.PosX, e.config.PosY, e.config.Width, e.config.Height); err != nil {
		return core.InStage("bootstrap", err)
	}

	if err := e.assetManager.Initialize(e.config.HotReload); err != nil {
		return core.InStage("bootstrap", err)
	}
	kernels := make(map[string][]uint32, 3)
	for _, name := range []string{vulkan.ComputeShaderName, vulkan.VertexShaderName, vulkan.FragmentShaderName} {
		code, err := e.assetManager.LoadKernel(name)
		if err != nil {
			return core.InStage("bootstrap", err)
		}
		kernels[name] = code
	}

	e.camera = components.NewAffineCamera(e.platform, e.config.Camera.Smoothing, e.config.Camera.PanDivisor)

	rendererConfig := vulkan.RendererConfig{
		ApplicationName: e.config.Name,
		Validation:      e.config.Validation,
		VSync:           e.config.VSync,
		MSAASamples:     e.config.MSAASamples,
		FenceTimeout:    e.config.FenceTimeout(),
		MaxIterations:   e.config.Fractal.MaxIterations,
		ComputeKernel:   kernels[vulkan.ComputeShaderName],
		VertexShader:    kernels[vulkan.VertexShaderName],
		FragmentShader:  kernels[vulkan.FragmentShaderName],
	}
	if err := e.renderer.Initialize(rendererConfig, e.camera.AffineMap()); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

/**
 * @brief Runs the frame loop until the window closes, Escape is pressed or
 * the quit flag is set. Each tick pumps events, applies pending actions,
 * moves the camera and renders, then sleeps out the rest of the frame.
 */
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	targetFrame := frameDuration(e.config.TargetFPS, e.platform.RefreshRate())
	core.LogInfo("Frame pacing at %v per frame.", targetFrame)

	for e.isRunning && !e.quit.Load() {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		frameStart := time.Now()

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		if err := e.reloadKernels(); err != nil {
			return err
		}
		e.applyActions()

		if !e.isSuspended {
			e.camera.Update(delta)
			if err := e.renderer.DrawFrame(e.camera.AffineMap()); err != nil {
				return err
			}
		}

		e.metrics.SetGPUTimes(e.renderer.GPUTimes())
		if e.metrics.Update(delta) {
			fps, frameMS := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame, render %d us, compute %d us",
				fps, frameMS, e.metrics.RenderTime.Microseconds(), e.metrics.ComputeTime.Microseconds())
		}

		// If there is time left, give it back to the OS.
		if remaining := targetFrame - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return nil
}

// reloadKernels rebuilds pipelines for every shader written since the last
// tick. A kernel that fails to load or build leaves the old one running.
func (e *Engine) reloadKernels() error {
	for _, name := range e.assetManager.Drain() {
		code, err := e.assetManager.LoadKernel(name)
		if err != nil {
			continue
		}
		if err := e.renderer.ReloadShader(name, code); err != nil && errors.Is(err, core.ErrDeviceLost) {
			return err
		}
	}
	return nil
}

func (e *Engine) applyActions() {
	if e.resetRequested {
		e.resetRequested = false
		e.camera.Reset()
		core.LogInfo("Camera reset.")
	}
	if e.screenshotRequested {
		e.screenshotRequested = false
		e.takeScreenshot()
	}
}

func (e *Engine) takeScreenshot() {
	img, err := e.renderer.Screenshot()
	if err != nil {
		core.LogError("screenshot failed: %s", err)
		return
	}
	path, err := e.screenshots.Write(e.session.NextCaptureName("mandelbrot", "bmp"), img)
	if err != nil {
		return
	}
	core.LogInfo("Screenshot saved to '%s'.", path)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if err := e.renderer.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := e.assetManager.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.events.Shutdown()
	return errors.Join(errs...)
}

// frameDuration is the tick length for targetFPS, falling back to the monitor
// refresh rate when targetFPS is not positive.
func frameDuration(targetFPS, refreshRate int) time.Duration {
	rate := targetFPS
	if rate <= 0 {
		rate = refreshRate
	}
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch data.U16[0] {
	case platform.KeyEscape:
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	case platform.KeyR:
		e.resetRequested = true
		return true
	case platform.KeyP:
		e.screenshotRequested = true
		return true
	}
	return false
}

func (e *Engine) onScroll(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if e.camera != nil {
		e.camera.OnScroll(data.F64[1])
	}
	return true
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width, height := data.U32[0], data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.renderer.OnResize(width, height)
	return true
}
