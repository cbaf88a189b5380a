package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/mandelbrot/engine/core"
	"github.com/spaghettifunk/mandelbrot/engine/renderer/components"
)

const (
	minIterations = 1
	maxIterations = 65536
)

type CameraConfig struct {
	// Exponential smoothing rate in 1/s.
	Smoothing float32 `toml:"smoothing"`
	// Pointer pixels per plane unit at scale 1.
	PanDivisor float32 `toml:"pan_divisor"`
}

type FractalConfig struct {
	MaxIterations uint32 `toml:"max_iterations"`
}

type ApplicationConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting width.
	Width uint32 `toml:"width"`
	// Window starting height.
	Height uint32 `toml:"height"`
	// Window starting position x axis.
	PosX int `toml:"pos_x"`
	// Window starting position y axis.
	PosY int `toml:"pos_y"`

	// Directory holding the compiled *.spv kernels.
	ShaderDir     string `toml:"shader_dir"`
	ScreenshotDir string `toml:"screenshot_dir"`
	LogLevel      string `toml:"log_level"`

	Validation  bool `toml:"validation"`
	VSync       bool `toml:"vsync"`
	MSAASamples int  `toml:"msaa_samples"`
	// Overrides the monitor refresh rate when positive.
	TargetFPS int `toml:"target_fps"`
	// Zero waits on fences forever.
	FenceTimeoutMS int  `toml:"fence_timeout_ms"`
	HotReload      bool `toml:"hot_reload"`

	Camera  CameraConfig  `toml:"camera"`
	Fractal FractalConfig `toml:"fractal"`
}

func DefaultConfig() ApplicationConfig {
	return ApplicationConfig{
		Name:          "Mandelbrot",
		Width:         1280,
		Height:        720,
		PosX:          100,
		PosY:          100,
		ShaderDir:     "assets/shaders",
		ScreenshotDir: "screenshots",
		LogLevel:      "info",
		MSAASamples:   8,
		HotReload:     true,
		Camera: CameraConfig{
			Smoothing:  components.DefaultSmoothing,
			PanDivisor: components.DefaultPanDivisor,
		},
		Fractal: FractalConfig{
			MaxIterations: 256,
		},
	}
}

/**
 * @brief Reads the configuration at path over the defaults. A missing file
 * yields the defaults; a malformed or invalid one is an error.
 */
func LoadConfig(path string) (ApplicationConfig, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("No config at '%s', using defaults.", path)
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("failed to read config '%s': %v: %w", path, err, core.ErrInvalidConfig)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config '%s': %v: %w", path, err, core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	var problems []error
	if c.Width == 0 || c.Height == 0 {
		problems = append(problems, fmt.Errorf("window size %dx%d must be non-zero", c.Width, c.Height))
	}
	if c.ShaderDir == "" {
		problems = append(problems, errors.New("shader_dir must be set"))
	}
	if c.Camera.Smoothing <= 0 {
		problems = append(problems, fmt.Errorf("camera.smoothing %v must be positive", c.Camera.Smoothing))
	}
	if c.Camera.PanDivisor <= 0 {
		problems = append(problems, fmt.Errorf("camera.pan_divisor %v must be positive", c.Camera.PanDivisor))
	}
	if c.Fractal.MaxIterations < minIterations || c.Fractal.MaxIterations > maxIterations {
		problems = append(problems, fmt.Errorf("fractal.max_iterations %d outside [%d, %d]", c.Fractal.MaxIterations, minIterations, maxIterations))
	}
	if c.MSAASamples < 0 {
		problems = append(problems, fmt.Errorf("msaa_samples %d must not be negative", c.MSAASamples))
	}
	if c.TargetFPS < 0 || c.FenceTimeoutMS < 0 {
		problems = append(problems, errors.New("target_fps and fence_timeout_ms must not be negative"))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, errors.Join(problems...))
	}
	return nil
}

func (c *ApplicationConfig) FenceTimeout() time.Duration {
	return time.Duration(c.FenceTimeoutMS) * time.Millisecond
}
