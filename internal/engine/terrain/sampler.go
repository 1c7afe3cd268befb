package terrain

import (
	"errors"
	gomath "math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Faultbox/downhill/pkg/math"
)

// ErrEmptySurface is returned when a sampler has no triangle with area.
var ErrEmptySurface = errors.New("terrain: surface has no triangles with area")

// SurfaceSampler draws points uniformly by area over a triangle list.
type SurfaceSampler struct {
	tris    []math.Triangle
	pick    distuv.Categorical
	unit    distuv.Uniform
	surface float32
}

// NewSurfaceSampler prepares area-weighted sampling over tris using src for
// randomness. A nil src seeds from the runtime.
func NewSurfaceSampler(tris []math.Triangle, src rand.Source) (*SurfaceSampler, error) {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	weights := make([]float64, len(tris))
	var total float64
	for i, t := range tris {
		a := t.Area()
		if !(a > 0) {
			continue
		}
		weights[i] = float64(a)
		total += weights[i]
	}
	if total == 0 {
		return nil, ErrEmptySurface
	}

	return &SurfaceSampler{
		tris:    tris,
		pick:    distuv.NewCategorical(weights, src),
		unit:    distuv.Uniform{Min: 0, Max: 1, Src: src},
		surface: float32(total),
	}, nil
}

// Area returns the total sampled surface area.
func (s *SurfaceSampler) Area() float32 {
	return s.surface
}

// Sample returns n points on the surface.
func (s *SurfaceSampler) Sample(n int) []math.Vec3 {
	points := make([]math.Vec3, 0, n)
	for range n {
		t := s.tris[int(s.pick.Rand())]
		points = append(points, s.pointIn(t))
	}
	return points
}

// pointIn picks a uniform point inside t using square-root barycentrics.
func (s *SurfaceSampler) pointIn(t math.Triangle) math.Vec3 {
	r1 := float32(gomath.Sqrt(s.unit.Rand()))
	r2 := float32(s.unit.Rand())
	return t.Barycentric(1-r1, r1*(1-r2), r1*r2)
}
