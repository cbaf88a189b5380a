package assets

import "github.com/spaghettifunk/mandelbrot/engine/assets/loaders"

type Loader interface {
	Load(path string, name string) (*loaders.Resource, error)
	Unload(*loaders.Resource) error
}
