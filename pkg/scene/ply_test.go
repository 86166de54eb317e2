package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

const pyramidPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 4
property list uchar int vertex_indices
end_header
-1 0 -1
1 0 -1
0 0 1
0 2 0
3 0 1 3
3 1 2 3
3 2 0 3
3 0 2 1
`

func TestFitToRoom(t *testing.T) {
	vertices := []core.Vec3{
		core.NewVec3(-1, 0, -1),
		core.NewVec3(1, 0, -1),
		core.NewVec3(0, 0, 1),
		core.NewVec3(0, 2, 0),
	}

	fitted := fitToRoom(vertices)
	bounds := core.NewAABBFromPoints(fitted...)

	if math.Abs(bounds.Min.Y) > 1e-9 {
		t.Errorf("Expected mesh to rest on the floor, min y = %f", bounds.Min.Y)
	}
	size := bounds.Size()
	if extent := math.Max(size.X, math.Max(size.Y, size.Z)); math.Abs(extent-plyFitSize) > 1e-9 {
		t.Errorf("Expected largest extent %f, got %f", plyFitSize, extent)
	}
	center := bounds.Center()
	if math.Abs(center.X-cornellSize/2) > 1e-9 || math.Abs(center.Z-cornellSize/2) > 1e-9 {
		t.Errorf("Expected mesh centered in the room, got center %v", center)
	}
}

func TestNewPLYScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyramid.ply")
	if err := os.WriteFile(path, []byte(pyramidPLY), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewPLYScene(path)
	if err != nil {
		t.Fatalf("NewPLYScene failed: %v", err)
	}

	// Five walls, the light and the mesh
	if s.SurfaceCount() != 7 || s.PrimitiveCount() != 10 || s.LightCount() != 1 {
		t.Errorf("Unexpected scene contents: %s", s)
	}

	// Straight down next to the apex, which sits at y=330
	hit := s.NearestHit(core.NewRay(core.NewVec3(279, 500, 278), core.NewVec3(0, -1, 0)))
	if !hit.Hit {
		t.Fatal("Expected to hit the pyramid")
	}
	if hit.Point.Y < 300 || hit.Point.Y > 330 {
		t.Errorf("Expected hit near the apex, got %v", hit.Point)
	}
}

func TestNewPLYScene_MissingFile(t *testing.T) {
	if _, err := NewPLYScene(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("Expected an error for a missing PLY file")
	}
}
