//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// glslcEnv overrides the shader compiler binary, e.g. GLSLC=/opt/vulkan/bin/glslc.
const glslcEnv = "GLSLC"

func glslc() string {
	if path := os.Getenv(glslcEnv); path != "" {
		return path
	}
	return "glslc"
}

// compileShader turns one GLSL stage into <outDir>/<name>.spv. Up-to-date
// outputs are skipped.
func compileShader(src, outDir string) error {
	out := filepath.Join(outDir, filepath.Base(src)+".spv")
	stale, err := targetStale(out, src)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	if err := sh.RunV(glslc(), src, "-o", out); err != nil {
		return fmt.Errorf("error compiling %s: %w", src, err)
	}
	return nil
}

func targetStale(out, src string) (bool, error) {
	outInfo, err := os.Stat(out)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}
