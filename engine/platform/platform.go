package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

const fallbackRefreshRate = 60

// Key codes carried in EVENT_CODE_KEY_PRESSED/RELEASED.
const (
	KeyEscape = uint16(glfw.KeyEscape)
	KeyR      = uint16(glfw.KeyR)
	KeyP      = uint16(glfw.KeyP)
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the window and turns glfw callbacks into engine events. All
// methods must be called from the main thread.
type Platform struct {
	Window *glfw.Window
	events *core.EventSystem
}

func New(events *core.EventSystem) (*Platform, error) {
	if events == nil {
		return nil, fmt.Errorf("platform needs an event system: %w", core.ErrInvalidConfig)
	}
	return &Platform{
		Window: nil,
		events: events,
	}, nil
}

func (p *Platform) Startup(applicationName string, x, y int, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return fmt.Errorf("glfw reports no Vulkan loader: %w", core.ErrDeviceSelect)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(x, y)
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events without blocking.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// WaitMessages blocks until at least one window event arrives. Used while the
// framebuffer is zero sized.
func (p *Platform) WaitMessages() {
	glfw.WaitEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window == nil || p.Window.ShouldClose()
}

// RefreshRate of the primary monitor in Hz, 60 when unknown.
func (p *Platform) RefreshRate() int {
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return fallbackRefreshRate
	}
	mode := monitor.GetVideoMode()
	if mode == nil || mode.RefreshRate <= 0 {
		return fallbackRefreshRate
	}
	return mode.RefreshRate
}

func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateWindowSurface returns the raw VkSurfaceKHR handle for the window.
func (p *Platform) CreateWindowSurface(instance interface{}) (uintptr, error) {
	return p.Window.CreateWindowSurface(instance, nil)
}

func (p *Platform) FramebufferSize() (int, int) {
	return p.Window.GetFramebufferSize()
}

func (p *Platform) CursorPos() (float64, float64) {
	return p.Window.GetCursorPos()
}

func (p *Platform) SetCursorPos(x, y float64) {
	p.Window.SetCursorPos(x, y)
}

func (p *Platform) PrimaryButtonPressed() bool {
	return p.Window.GetMouseButton(glfw.MouseButton1) == glfw.Press
}

func (p *Platform) SetCursorHidden(hidden bool) {
	if hidden {
		p.Window.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
		return
	}
	p.Window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key < 0 {
		return
	}
	ctx := core.EventContext{}
	ctx.U16[0] = uint16(key)
	switch action {
	case glfw.Press:
		p.events.Fire(core.EVENT_CODE_KEY_PRESSED, p, ctx)
	case glfw.Release:
		p.events.Fire(core.EVENT_CODE_KEY_RELEASED, p, ctx)
	}
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	ctx := core.EventContext{}
	ctx.F64[0] = xoff
	ctx.F64[1] = yoff
	p.events.Fire(core.EVENT_CODE_MOUSE_WHEEL, p, ctx)
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	ctx := core.EventContext{}
	ctx.U32[0] = uint32(width)
	ctx.U32[1] = uint32(height)
	p.events.Fire(core.EVENT_CODE_RESIZED, p, ctx)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
}
