package components

import (
	gomath "math"
	"testing"

	"github.com/spaghettifunk/mandelbrot/engine/math"
)

type fakeInput struct {
	width, height int
	x, y          float64
	pressed       bool
	hidden        bool
	warps         int
}

func (f *fakeInput) FramebufferSize() (int, int)   { return f.width, f.height }
func (f *fakeInput) CursorPos() (float64, float64) { return f.x, f.y }
func (f *fakeInput) PrimaryButtonPressed() bool    { return f.pressed }
func (f *fakeInput) SetCursorHidden(hidden bool)   { f.hidden = hidden }
func (f *fakeInput) SetCursorPos(x, y float64) {
	f.x, f.y = x, y
	f.warps++
}

func newTestCamera() (*AffineCamera, *fakeInput) {
	in := &fakeInput{width: 640, height: 480}
	return NewAffineCamera(in, DefaultSmoothing, DefaultPanDivisor), in
}

func TestZoomStepKeepsScalePositive(t *testing.T) {
	tests := []struct {
		name    string
		yoffset float64
		want    float32
	}{
		{"scroll up one notch", 1, 0.5},
		{"scroll down one notch", -1, 1.5},
		{"no scroll", 0, 1},
		{"huge scroll up", 100, minZoomStep},
		{"huge scroll down", -100, maxZoomStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZoomStep(tt.yoffset); got != tt.want {
				t.Errorf("ZoomStep(%v) = %v, want %v", tt.yoffset, got, tt.want)
			}
		})
	}

	c, _ := newTestCamera()
	for i := 0; i < 1000; i++ {
		c.OnScroll(50)
		if c.TargetScale <= 0 {
			t.Fatalf("target scale went non-positive after %d scrolls", i+1)
		}
	}
}

func TestScrollTicksConverge(t *testing.T) {
	c, _ := newTestCamera()
	for i := 0; i < 10; i++ {
		c.OnScroll(0.1)
	}
	want := gomath.Pow(0.95, 10)
	if d := gomath.Abs(float64(c.TargetScale) - want); d > 1e-5 {
		t.Fatalf("target scale = %v, want %v", c.TargetScale, want)
	}

	// one second of 60 Hz ticks must land within 1% of the target.
	for i := 0; i < 60; i++ {
		c.Update(1.0 / 60.0)
	}
	rel := gomath.Abs(float64(c.CurrentScale-c.TargetScale)) / float64(c.TargetScale)
	if rel > 0.01 {
		t.Fatalf("current scale %v not within 1%% of target %v", c.CurrentScale, c.TargetScale)
	}
}

func TestSmoothingFactor(t *testing.T) {
	if got := SmoothingFactor(12, 0); got != 0 {
		t.Errorf("zero delta: got %v", got)
	}
	if got := SmoothingFactor(12, 100); got != 1 {
		t.Errorf("large delta: got %v, want 1", got)
	}
	got := SmoothingFactor(12, 1.0/60.0)
	want := float32(1 - gomath.Exp(-12.0/60.0))
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("60 Hz tick: got %v, want %v", got, want)
	}
}

func TestMovementModeTracksCursorVisibility(t *testing.T) {
	c, in := newTestCamera()
	in.x, in.y = 320, 240

	steps := []struct {
		name     string
		pressed  bool
		x, y     float64
		movement bool
	}{
		{"idle", false, 320, 240, false},
		{"press enters", true, 320, 240, true},
		{"drag", true, 300, 250, true},
		{"drag again", true, 310, 230, true},
		{"release exits", false, 310, 230, false},
		{"idle again", false, 100, 100, false},
	}
	for _, s := range steps {
		in.pressed = s.pressed
		in.x, in.y = s.x, s.y
		c.Update(1.0 / 60.0)
		if c.InMovementMode() != s.movement {
			t.Fatalf("%s: movement mode = %v, want %v", s.name, c.InMovementMode(), s.movement)
		}
		if in.hidden != c.InMovementMode() {
			t.Fatalf("%s: cursor hidden = %v while movement mode = %v", s.name, in.hidden, c.InMovementMode())
		}
	}
}

func TestDragMovesTargetOffset(t *testing.T) {
	c, in := newTestCamera()
	in.x, in.y = 320, 240
	in.pressed = true
	c.Update(0)

	in.x, in.y = 270, 240
	c.Update(0)

	want := float32(50) / DefaultPanDivisor
	if math.Abs(c.TargetOffset.X-want) > 1e-7 || c.TargetOffset.Y != 0 {
		t.Fatalf("target offset = %+v, want (%v, 0)", c.TargetOffset, want)
	}
	if in.x != 320 || in.y != 240 {
		t.Fatalf("cursor not warped back to latch point: (%v, %v)", in.x, in.y)
	}
}

func TestPressOutsideWindowIsIgnored(t *testing.T) {
	c, in := newTestCamera()
	in.x, in.y = -5, 100
	in.pressed = true
	c.Update(1.0 / 60.0)
	if c.InMovementMode() {
		t.Fatal("entered movement mode with cursor outside the framebuffer")
	}
	if in.hidden {
		t.Fatal("cursor hidden without movement mode")
	}
	if c.TargetOffset != math.NewVec2Zero() {
		t.Fatalf("offset changed: %+v", c.TargetOffset)
	}
}

func TestDragOutOfBoundsIsNoOp(t *testing.T) {
	c, in := newTestCamera()
	in.x, in.y = 320, 240
	in.pressed = true
	c.Update(0)

	in.x, in.y = 700, 240
	warps := in.warps
	c.Update(0)
	if c.TargetOffset != math.NewVec2Zero() {
		t.Fatalf("offset changed on out-of-bounds drag: %+v", c.TargetOffset)
	}
	if in.warps != warps {
		t.Fatal("cursor warped on out-of-bounds drag")
	}
	if !c.InMovementMode() {
		t.Fatal("out-of-bounds drag left movement mode")
	}
}

func TestAffineMapComposition(t *testing.T) {
	c, _ := newTestCamera()
	c.CurrentScale = 2
	c.CurrentOffset = math.NewVec2(-0.5, 0.25)

	m := c.AffineMap()
	aspect := float32(640) / float32(480)

	got := m.TransformPoint(math.NewVec2(1, 1))
	want := math.NewVec2(-0.5+2*aspect, 0.25+2)
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Fatalf("map(1,1) = %+v, want %+v", got, want)
	}
	origin := m.TransformPoint(math.NewVec2Zero())
	if origin != c.CurrentOffset {
		t.Fatalf("map(0,0) = %+v, want offset %+v", origin, c.CurrentOffset)
	}
}

func TestAffineMapZeroHeight(t *testing.T) {
	c, in := newTestCamera()
	in.width, in.height = 0, 0
	m := c.AffineMap()
	if !m.ApproxEqual(math.NewMat3Identity(), 1e-7) {
		t.Fatalf("minimized window map = %+v, want identity", m)
	}
}

func TestReset(t *testing.T) {
	c, _ := newTestCamera()
	c.OnScroll(1)
	c.TargetOffset = math.NewVec2(1, 1)
	c.Update(1)
	c.Reset()
	if c.TargetScale != 1 || c.CurrentScale != 1 || c.CurrentOffset != math.NewVec2Zero() || c.TargetOffset != math.NewVec2Zero() {
		t.Fatalf("reset left state: %+v", c)
	}
}
