package engine

import (
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spaghettifunk/mandelbrot/engine/assets"
	"github.com/spaghettifunk/mandelbrot/engine/assets/loaders"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/math"
	"github.com/spaghettifunk/mandelbrot/engine/platform"
	"github.com/spaghettifunk/mandelbrot/engine/renderer"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/components"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/vulkan"
)

type fakeBackend struct {
	resized     [][2]uint32
	reloaded    map[string][]uint32
	reloadErr   error
	screenshot  *image.RGBA
	drawnFrames int
}

func (f *fakeBackend) Initialize(vulkan.RendererConfig, math.Mat3) error { return nil }
func (f *fakeBackend) Shutdown() error                                   { return nil }
func (f *fakeBackend) Resized(w, h uint32)                               { f.resized = append(f.resized, [2]uint32{w, h}) }
func (f *fakeBackend) DrawFrame(math.Mat3) error                         { f.drawnFrames++; return nil }
func (f *fakeBackend) Screenshot() (*image.RGBA, error)                  { return f.screenshot, nil }
func (f *fakeBackend) GPUTimes() (time.Duration, time.Duration)          { return 0, 0 }

func (f *fakeBackend) ReloadShader(name string, code []uint32) error {
	if f.reloaded == nil {
		f.reloaded = map[string][]uint32{}
	}
	f.reloaded[name] = code
	return f.reloadErr
}

type stillInput struct{}

func (stillInput) FramebufferSize() (int, int)   { return 640, 480 }
func (stillInput) CursorPos() (float64, float64) { return 320, 240 }
func (stillInput) SetCursorPos(x, y float64)     {}
func (stillInput) PrimaryButtonPressed() bool    { return false }
func (stillInput) SetCursorHidden(hidden bool)   {}

func newTestEngine(t *testing.T, backend *fakeBackend) *Engine {
	t.Helper()
	e := &Engine{
		config:      DefaultConfig(),
		session:     core.NewSession(),
		quit:        &atomic.Bool{},
		isRunning:   true,
		width:       640,
		height:      480,
		events:      core.NewEventSystem(),
		renderer:    renderer.NewWithBackend(backend),
		camera:      components.NewAffineCamera(stillInput{}, 0, 0),
		screenshots: &loaders.ImageWriter{Dir: t.TempDir()},
	}
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_MOUSE_WHEEL, e, e.onScroll)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	return e
}

func keyEvent(key uint16) core.EventContext {
	ctx := core.EventContext{}
	ctx.U16[0] = key
	return ctx
}

func sizeEvent(w, h uint32) core.EventContext {
	ctx := core.EventContext{}
	ctx.U32[0], ctx.U32[1] = w, h
	return ctx
}

func TestFrameDuration(t *testing.T) {
	tests := []struct {
		target, refresh int
		want            time.Duration
	}{
		{0, 60, time.Second / 60},
		{30, 144, time.Second / 30},
		{0, 0, time.Second / 60},
		{-1, 120, time.Second / 120},
	}
	for _, tt := range tests {
		if got := frameDuration(tt.target, tt.refresh); got != tt.want {
			t.Errorf("frameDuration(%d, %d) = %v, want %v", tt.target, tt.refresh, got, tt.want)
		}
	}
}

func TestEscapeQuits(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	e.events.Fire(core.EVENT_CODE_KEY_PRESSED, nil, keyEvent(platform.KeyEscape))
	if e.isRunning {
		t.Error("engine still running after Escape")
	}
}

func TestResetKeyRestoresCamera(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	e.camera.OnScroll(0.5)
	e.camera.Update(1)
	if e.camera.TargetScale == 1 {
		t.Fatal("scroll did not change the target scale")
	}

	e.events.Fire(core.EVENT_CODE_KEY_PRESSED, nil, keyEvent(platform.KeyR))
	e.applyActions()
	if e.camera.TargetScale != 1 || e.camera.CurrentScale != 1 {
		t.Errorf("scale after reset = %v/%v, want 1", e.camera.TargetScale, e.camera.CurrentScale)
	}
	if e.resetRequested {
		t.Error("reset request not consumed")
	}
}

func TestScrollReachesCamera(t *testing.T) {
	e := newTestEngine(t, &fakeBackend{})
	ctx := core.EventContext{}
	ctx.F64[1] = 0.1
	e.events.Fire(core.EVENT_CODE_MOUSE_WHEEL, nil, ctx)
	if got, want := e.camera.TargetScale, components.ZoomStep(0.1); got != want {
		t.Errorf("target scale = %v, want %v", got, want)
	}
}

func TestScreenshotKeyWritesFile(t *testing.T) {
	backend := &fakeBackend{screenshot: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	e := newTestEngine(t, backend)

	e.events.Fire(core.EVENT_CODE_KEY_PRESSED, nil, keyEvent(platform.KeyP))
	e.applyActions()

	matches, err := filepath.Glob(filepath.Join(e.screenshots.Dir, "mandelbrot-"+e.session.Short()+"-*.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("screenshots = %v, want one file", matches)
	}
}

func TestResizeSuspendsAndResumes(t *testing.T) {
	backend := &fakeBackend{}
	e := newTestEngine(t, backend)

	e.events.Fire(core.EVENT_CODE_RESIZED, nil, sizeEvent(0, 0))
	if !e.isSuspended {
		t.Fatal("zero size did not suspend")
	}
	if len(backend.resized) != 0 {
		t.Errorf("backend resized while minimized: %v", backend.resized)
	}

	e.events.Fire(core.EVENT_CODE_RESIZED, nil, sizeEvent(800, 600))
	if e.isSuspended {
		t.Error("restore did not resume")
	}
	if len(backend.resized) != 1 || backend.resized[0] != [2]uint32{800, 600} {
		t.Errorf("backend resizes = %v, want [800 600]", backend.resized)
	}

	// Same size again is not a resize.
	e.events.Fire(core.EVENT_CODE_RESIZED, nil, sizeEvent(800, 600))
	if len(backend.resized) != 1 {
		t.Errorf("duplicate size forwarded: %v", backend.resized)
	}
}

func writeSPIRV(t *testing.T, path string, word uint32) {
	t.Helper()
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, loaders.SPIRVMagic)
	binary.LittleEndian.PutUint32(b[4:], word)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReloadKernels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, vulkan.ComputeShaderName+".spv")
	writeSPIRV(t, path, 1)

	am, err := assets.NewAssetManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	if err := am.Initialize(true); err != nil {
		t.Fatal(err)
	}

	backend := &fakeBackend{}
	e := newTestEngine(t, backend)
	e.assetManager = am

	writeSPIRV(t, path, 2)
	deadline := time.Now().Add(5 * time.Second)
	for backend.reloaded[vulkan.ComputeShaderName] == nil && time.Now().Before(deadline) {
		if err := e.reloadKernels(); err != nil {
			t.Fatalf("reloadKernels: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	code := backend.reloaded[vulkan.ComputeShaderName]
	if len(code) != 2 || code[1] != 2 {
		t.Fatalf("reloaded code = %v, want the rewritten kernel", code)
	}
}

func TestReloadKernelsFatalOnDeviceLost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, vulkan.FragmentShaderName+".spv")
	writeSPIRV(t, path, 1)

	am, err := assets.NewAssetManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	if err := am.Initialize(true); err != nil {
		t.Fatal(err)
	}

	backend := &fakeBackend{reloadErr: core.ErrDeviceLost}
	e := newTestEngine(t, backend)
	e.assetManager = am

	writeSPIRV(t, path, 2)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := e.reloadKernels(); err != nil {
			if !errors.Is(err, core.ErrDeviceLost) {
				t.Fatalf("err = %v, want ErrDeviceLost", err)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("device loss during reload was not reported")
}
