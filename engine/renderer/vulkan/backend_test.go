package vulkan

import (
	"image"
	"image/color"
	"testing"
)

func paddedFractal(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{B: 255, A: 255}
			switch x {
			case 0:
				c = color.RGBA{G: 255, A: 255}
			case width - 1:
				c = color.RGBA{R: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFitFramebufferKeepsEdges(t *testing.T) {
	tests := []struct {
		name          string
		padded        [2]int
		width, height int
	}{
		{"rounded up", [2]int{648, 496}, 645, 490},
		{"one tile short", [2]int{16, 16}, 9, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitFramebuffer(paddedFractal(tt.padded[0], tt.padded[1]), tt.width, tt.height)
			if b := got.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
				t.Fatalf("bounds = %v, want %dx%d", b, tt.width, tt.height)
			}
			for _, y := range []int{0, tt.height - 1} {
				if c := got.RGBAAt(0, y); c.G != 255 || c.R != 0 {
					t.Errorf("left column at y=%d = %v, want the padded image's first column", y, c)
				}
				if c := got.RGBAAt(tt.width-1, y); c.R != 255 || c.G != 0 {
					t.Errorf("right column at y=%d = %v, want the padded image's last column", y, c)
				}
			}
		})
	}
}

func TestFitFramebufferExactSize(t *testing.T) {
	img := paddedFractal(640, 480)
	if got := fitFramebuffer(img, 640, 480); got != img {
		t.Error("aligned framebuffer should reuse the readback")
	}
	if got := fitFramebuffer(img, 0, 0); got != img {
		t.Error("empty framebuffer should leave the readback untouched")
	}
}
