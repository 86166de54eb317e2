package scene

import (
	"fmt"

	"github.com/z466chen/SimplePathTracer/pkg/geometry"
)

// builder collects the first error while a scene is assembled
type builder struct {
	scene *Scene
	err   error
}

func newBuilder(name string) *builder {
	return &builder{scene: New(name)}
}

func (b *builder) surface(shapes ...geometry.Shape) {
	for _, shape := range shapes {
		if b.err == nil {
			b.err = b.scene.AddSurface(shape)
		}
	}
}

func (b *builder) light(shape geometry.Shape) {
	if b.err == nil {
		b.err = b.scene.AddLight(shape)
	}
}

// mesh adds a triangle mesh, recording a construction error
func (b *builder) mesh(mesh *geometry.TriangleMesh, err error) {
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	b.surface(mesh)
}

// build freezes the scene
func (b *builder) build() (*Scene, error) {
	if b.err == nil {
		b.err = b.scene.BuildAccelerationStructure()
	}
	if b.err != nil {
		return nil, fmt.Errorf("building scene %q: %w", b.scene.Name, b.err)
	}

	logger.Infof("built %s", b.scene)
	return b.scene, nil
}
