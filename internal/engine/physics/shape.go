package physics

import (
	gomath "math"

	"github.com/Faultbox/downhill/pkg/math"
)

// Capsule is a Y-aligned capsule: a segment of length 2*HalfLength swept by
// Radius. It is the only shape that can be cast.
type Capsule struct {
	Radius     float32
	HalfLength float32
}

// NewCapsule builds a capsule from its radius and segment length.
func NewCapsule(radius, length float32) Capsule {
	return Capsule{Radius: radius, HalfLength: length / 2}
}

// Segment returns the world-space end points of the capsule core.
func (c Capsule) Segment(origin math.Vec3, rot math.Quat) (a, b math.Vec3) {
	axis := rot.Rotate(math.Up).Scale(c.HalfLength)
	return origin.Sub(axis), origin.Add(axis)
}

// Bounds returns the capsule's bounding box at origin.
func (c Capsule) Bounds(origin math.Vec3, rot math.Quat) AABB {
	a, b := c.Segment(origin, rot)
	return NewAABB(a, b).Grow(c.Radius)
}

// sphereOffsets approximates the capsule by spheres spaced at most one
// radius apart along its core.
func (c Capsule) sphereOffsets(rot math.Quat) []math.Vec3 {
	if c.HalfLength <= 0 || c.Radius <= 0 {
		return []math.Vec3{{}}
	}
	n := int(gomath.Ceil(float64(2*c.HalfLength/c.Radius))) + 1
	axis := rot.Rotate(math.Up)
	offsets := make([]math.Vec3, n)
	for i := range offsets {
		s := -c.HalfLength + 2*c.HalfLength*float32(i)/float32(n-1)
		offsets[i] = axis.Scale(s)
	}
	return offsets
}
