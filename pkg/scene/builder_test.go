package scene

import (
	"errors"
	"testing"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
)

func TestBuilder_MeshErrors(t *testing.T) {
	first := errors.New("first failure")
	second := errors.New("second failure")

	tests := []struct {
		name     string
		priorErr error
		meshErr  error
		expected error
	}{
		{"mesh error recorded", nil, second, second},
		{"earlier error kept", first, second, first},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder("test")
			b.err = tt.priorErr
			b.mesh(nil, tt.meshErr)

			if b.scene.SurfaceCount() != 0 {
				t.Errorf("Expected failed mesh not to be added, got %d surfaces", b.scene.SurfaceCount())
			}
			if _, err := b.build(); !errors.Is(err, tt.expected) {
				t.Errorf("Expected build error %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestBuilder_MeshAdded(t *testing.T) {
	vertices := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
	mesh, err := geometry.NewTriangleMesh(vertices, []int{0, 1, 2}, testWhite, nil)

	b := newBuilder("test")
	b.mesh(mesh, err)
	if b.err != nil || b.scene.SurfaceCount() != 1 {
		t.Errorf("Expected mesh to be added, err=%v surfaces=%d", b.err, b.scene.SurfaceCount())
	}
}
