package geometry

import (
	"sort"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// areaDistribution picks one of several shapes with probability proportional to its area
type areaDistribution struct {
	shapes     []Shape
	cumulative []float64
	total      float64
}

func newAreaDistribution(shapes []Shape) areaDistribution {
	cumulative := make([]float64, len(shapes))
	total := 0.0
	for i, shape := range shapes {
		total += shape.Area()
		cumulative[i] = total
	}
	return areaDistribution{shapes: shapes, cumulative: cumulative, total: total}
}

// sample picks a shape by area and then a uniform point on it,
// which makes the point uniform over the union
func (d areaDistribution) sample(sampler core.Sampler) Intersection {
	if len(d.shapes) == 0 || d.total <= 0 {
		return Intersection{}
	}

	u := sampler.Get1D() * d.total
	i := sort.Search(len(d.cumulative), func(i int) bool { return d.cumulative[i] > u })
	if i == len(d.shapes) {
		i = len(d.shapes) - 1
	}
	return d.shapes[i].Sample(sampler)
}
