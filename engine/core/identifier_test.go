package core

import (
	"strings"
	"testing"
)

func TestSessionCaptureNamesAreUnique(t *testing.T) {
	s := NewSession()
	a := s.NextCaptureName("mandelbrot", "bmp")
	b := s.NextCaptureName("mandelbrot", "bmp")
	if a == b {
		t.Fatalf("names collide: %s", a)
	}
	if !strings.HasPrefix(a, "mandelbrot-"+s.Short()+"-") || !strings.HasSuffix(a, "001.bmp") {
		t.Fatalf("unexpected name %s", a)
	}
	if len(s.Short()) != 8 {
		t.Fatalf("short id %q", s.Short())
	}
}
