package components

import (
	"github.com/spaghettifunk/mandelbrot/engine/math"
)

const (
	// DefaultSmoothing is the exponential smoothing rate k in 1/s.
	DefaultSmoothing float32 = 12.0
	// DefaultPanDivisor converts pointer pixels into plane units before zoom scaling.
	DefaultPanDivisor float32 = 5000.0

	minZoomStep float32 = 0.05
	maxZoomStep float32 = 20.0
	minScale    float32 = 1e-12
	maxScale    float32 = 64.0
)

// InputSource is the slice of the window system the camera reads every tick.
type InputSource interface {
	FramebufferSize() (int, int)
	CursorPos() (float64, float64)
	SetCursorPos(x, y float64)
	PrimaryButtonPressed() bool
	SetCursorHidden(hidden bool)
}

/**
 * @brief A 2D pan/zoom camera. Target values follow the input directly, the
 * current values chase them with exponential smoothing and feed the affine map.
 */
type AffineCamera struct {
	input      InputSource
	smoothing  float32
	panDivisor float32

	/** @brief Scale the camera is moving toward. Always > 0. */
	TargetScale float32
	/** @brief Smoothed scale used for rendering. */
	CurrentScale float32
	/** @brief Offset the camera is moving toward. */
	TargetOffset math.Vec2
	/** @brief Smoothed offset used for rendering. */
	CurrentOffset math.Vec2

	movementMode  bool
	latchedCursor math.Vec2
}

// NewAffineCamera creates a camera at scale 1 and offset (0, 0). Non-positive
// smoothing or pan divisor values fall back to the defaults.
func NewAffineCamera(input InputSource, smoothing, panDivisor float32) *AffineCamera {
	if smoothing <= 0 {
		smoothing = DefaultSmoothing
	}
	if panDivisor <= 0 {
		panDivisor = DefaultPanDivisor
	}
	c := &AffineCamera{
		input:      input,
		smoothing:  smoothing,
		panDivisor: panDivisor,
	}
	c.Reset()
	return c
}

// Reset returns both target and current state to the initial view. Movement mode
// is left untouched so a held drag keeps working.
func (c *AffineCamera) Reset() {
	c.TargetScale = 1
	c.CurrentScale = 1
	c.TargetOffset = math.NewVec2Zero()
	c.CurrentOffset = math.NewVec2Zero()
}

// InMovementMode reports whether a drag is in progress.
func (c *AffineCamera) InMovementMode() bool {
	return c.movementMode
}

// ZoomStep returns the target scale multiplier for a scroll offset.
func ZoomStep(yoffset float64) float32 {
	step := 0.5 + 0.5*(1-float32(yoffset))
	return math.Clamp(step, minZoomStep, maxZoomStep)
}

// OnScroll applies a scroll offset to the target scale immediately.
func (c *AffineCamera) OnScroll(yoffset float64) {
	c.TargetScale = math.Clamp(c.TargetScale*ZoomStep(yoffset), minScale, maxScale)
}

// SmoothingFactor returns 1 - exp(-k*dt) clamped to [0, 1].
func SmoothingFactor(k, deltaTime float32) float32 {
	if deltaTime <= 0 {
		return 0
	}
	return math.Clamp(1-math.Exp(-k*deltaTime), 0, 1)
}

// Update reads the pointer, moves the target offset and smooths the current state
// toward the target.
func (c *AffineCamera) Update(deltaTime float64) {
	delta := c.pointerDelta()
	c.TargetOffset = c.TargetOffset.Add(delta.Scale(c.CurrentScale))

	alpha := SmoothingFactor(c.smoothing, float32(deltaTime))
	c.CurrentScale = math.Lerp(c.CurrentScale, c.TargetScale, alpha)
	c.CurrentOffset = c.CurrentOffset.Lerp(c.TargetOffset, alpha)
}

/**
 * @brief Returns translate(current offset) · scale(current scale) · scale(aspect, 1)
 * for the current framebuffer.
 */
func (c *AffineCamera) AffineMap() math.Mat3 {
	width, height := c.input.FramebufferSize()
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	translate := math.NewMat3Translation2D(c.CurrentOffset)
	scale := math.NewMat3Scale2D(math.NewVec2(c.CurrentScale, c.CurrentScale))
	aspectCorrection := math.NewMat3Scale2D(math.NewVec2(aspect, 1))
	return translate.Mul(scale).Mul(aspectCorrection)
}

func (c *AffineCamera) cursorOutOfBounds(p math.Vec2) bool {
	width, height := c.input.FramebufferSize()
	return p.X < 0 || p.X >= float32(width) || p.Y < 0 || p.Y >= float32(height)
}

func (c *AffineCamera) cursor() math.Vec2 {
	x, y := c.input.CursorPos()
	return math.NewVec2(float32(x), float32(y))
}

// pointerDelta runs the drag state machine for one tick and returns the offset
// change before zoom scaling.
func (c *AffineCamera) pointerDelta() math.Vec2 {
	pressed := c.input.PrimaryButtonPressed()

	if c.movementMode && !pressed {
		c.movementMode = false
		c.input.SetCursorHidden(false)
		return math.NewVec2Zero()
	}
	if !c.movementMode && pressed {
		p := c.cursor()
		if c.cursorOutOfBounds(p) {
			return math.NewVec2Zero()
		}
		c.movementMode = true
		c.latchedCursor = p
		c.input.SetCursorHidden(true)
		return math.NewVec2Zero()
	}
	if !c.movementMode {
		return math.NewVec2Zero()
	}

	p := c.cursor()
	if c.cursorOutOfBounds(p) {
		return math.NewVec2Zero()
	}
	c.input.SetCursorPos(float64(c.latchedCursor.X), float64(c.latchedCursor.Y))
	return c.latchedCursor.Sub(p).Scale(1 / c.panDivisor)
}
