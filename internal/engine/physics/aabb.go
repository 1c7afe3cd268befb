package physics

import (
	gomath "math"

	"github.com/Faultbox/downhill/pkg/math"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners, handling swapped components.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// BoxFromCenter creates an AABB from a center and half extents.
func BoxFromCenter(center, halfExtents math.Vec3) AABB {
	return NewAABB(center.Sub(halfExtents), center.Add(halfExtents))
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	return AABB{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
}

// Extend grows the box to contain p.
func (b AABB) Extend(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Grow returns the box expanded by r on every side.
func (b AABB) Grow(r float32) AABB {
	d := math.Vec3{X: r, Y: r, Z: r}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Overlaps reports whether the boxes intersect (touching counts).
func (b AABB) Overlaps(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Center returns the box center.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// ClosestPoint returns the point inside the box nearest to p.
func (b AABB) ClosestPoint(p math.Vec3) math.Vec3 {
	return math.Vec3{
		X: clampf(p.X, b.Min.X, b.Max.X),
		Y: clampf(p.Y, b.Min.Y, b.Max.Y),
		Z: clampf(p.Z, b.Min.Z, b.Max.Z),
	}
}

// IntersectRay runs a slab test for the ray origin + t*dir.
// Returns the entry and exit parameters; hit is false when the ray misses
// the box or the box lies entirely behind the origin.
func (b AABB) IntersectRay(origin, dir math.Vec3) (tmin, tmax float32, hit bool) {
	tmin = float32(-gomath.MaxFloat32)
	tmax = float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o := origin.Axis(axis)
		d := dir.Axis(axis)
		lo := b.Min.Axis(axis)
		hi := b.Max.Axis(axis)

		if d != 0 {
			t1 := (lo - o) / d
			t2 := (hi - o) / d
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if o < lo || o > hi {
			return 0, 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
