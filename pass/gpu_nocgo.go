//go:build tinygo || !cgo

package pass

import (
	"errors"

	"meshvol/geom"
)

var errNoCGO = errors.New("meshvol: GPU accelerator requires CGo and is not supported on TinyGo")

// GPUAccelerator is a stub on platforms without CGo/GLFW support.
type GPUAccelerator struct{}

// NewGPUAccelerator always fails on this build.
func NewGPUAccelerator() (*GPUAccelerator, error) {
	return nil, errNoCGO
}

// Close is a no-op.
func (g *GPUAccelerator) Close() {}

// AsymmetricIntersect always fails on this build.
func (g *GPUAccelerator) AsymmetricIntersect(a, b geom.Mesh, opts Options) (float32, error) {
	return 0, errNoCGO
}
