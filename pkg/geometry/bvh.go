package geometry

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Shapes for leaf nodes (nil for internal nodes)
}

// BVH is a Bounding Volume Hierarchy for nearest-hit queries.
// It is read-only once built and may be queried from many goroutines.
type BVH struct {
	Root *BVHNode
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes  int
	LeafNodes   int
	MaxDepth    int
	TotalShapes int
}

// NewBVH constructs a BVH from a slice of shapes. The slice is copied.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)
	return &BVH{Root: buildBVH(shapesCopy)}
}

// buildBVH recursively splits at the midpoint of the longest axis of the node bounds
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for _, shape := range shapes[1:] {
		boundingBox = boundingBox.Union(shape.BoundingBox())
	}

	leaf := &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	if len(shapes) <= leafThreshold {
		return leaf
	}

	axis := boundingBox.LongestAxis()
	lo, hi := boundingBox.Min.Component(axis), boundingBox.Max.Component(axis)
	if hi <= lo {
		return leaf
	}

	left, right := partitionShapes(shapes, axis, (lo+hi)*0.5)
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left),
		Right:       buildBVH(right),
	}
}

// partitionShapes splits shapes by bounding box center along axis
func partitionShapes(shapes []Shape, axis int, splitPos float64) ([]Shape, []Shape) {
	var left, right []Shape
	for _, shape := range shapes {
		if shape.BoundingBox().Center().Component(axis) < splitPos {
			left = append(left, shape)
		} else {
			right = append(right, shape)
		}
	}
	return left, right
}

// Hit returns the nearest intersection with any shape in the BVH
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	if bvh.Root == nil {
		return Intersection{}, false
	}
	return hitNode(bvh.Root, ray, tMin, tMax)
}

func hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return Intersection{}, false
	}

	var closest Intersection
	found := false

	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if hit, ok := shape.Hit(ray, tMin, tMax); ok {
				closest = hit
				tMax = hit.Distance
				found = true
			}
		}
		return closest, found
	}

	for _, child := range [2]*BVHNode{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if hit, ok := hitNode(child, ray, tMin, tMax); ok {
			closest = hit
			tMax = hit.Distance
			found = true
		}
	}

	return closest, found
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// Stats walks the hierarchy and reports its size
func (bvh *BVH) Stats() BVHStats {
	var stats BVHStats
	if bvh.Root != nil {
		collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.Shapes != nil {
		stats.LeafNodes++
		stats.TotalShapes += len(node.Shapes)
		return
	}
	if node.Left != nil {
		collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		collectStats(node.Right, depth+1, stats)
	}
}
