package loaders

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/mandelbrot/engine/core"
	"golang.org/x/image/bmp"
)

// ImageWriter stores screenshots as BMP files under Dir.
type ImageWriter struct {
	Dir string
}

/**
 * @brief Encodes img as an opaque BMP named name inside the writer's directory,
 * creating the directory when needed. Returns the full path.
 */
func (iw *ImageWriter) Write(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(iw.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(iw.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		core.LogError("failed to create screenshot '%s': %s", path, err)
		return "", err
	}
	defer f.Close()

	if err := bmp.Encode(f, opaque(img)); err != nil {
		core.LogError("failed to encode screenshot '%s': %s", path, err)
		return "", err
	}
	return path, nil
}

// opaque forces alpha to 255 so the encoder writes a plain 24-bit image.
func opaque(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// ImageLoader decodes BMP files, so saved screenshots can be inspected.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string, name string) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode '%s': %w", path, err)
	}
	b := img.Bounds()
	return &Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(b.Dx() * b.Dy() * 4),
		Data:     img,
	}, nil
}

func (il *ImageLoader) Unload(*Resource) error {
	return nil
}
