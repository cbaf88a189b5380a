//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	shaderSourceDir = "shaders"
	shaderOutputDir = "assets/shaders"
)

var shaderStages = []string{".comp", ".vert", ".frag"}

type Build mg.Namespace

// Compiles every GLSL shader in shaders/ to SPIR-V under assets/shaders.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the application binary.
func (Build) App() error {
	mg.Deps(Build.Shaders)
	return sh.RunV("go", "build", "-o", "bin/mandelbrot", ".")
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	var sources []string
	for _, ext := range shaderStages {
		matches, err := filepath.Glob(filepath.Join(shaderSourceDir, "*"+ext))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderSourceDir)
	}
	for _, src := range sources {
		if err := compileShader(src, shaderOutputDir); err != nil {
			return err
		}
	}
	return nil
}
