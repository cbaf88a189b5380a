//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Compiles the shaders and then runs the application.
func (Run) App() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run mandelbrot...")
	return sh.RunV("go", "run", ".", "-config", "config.toml")
}

