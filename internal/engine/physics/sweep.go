package physics

import (
	gomath "math"

	"github.com/Faultbox/downhill/pkg/math"
)

// Narrow-phase sweeps of a sphere moving along a unit direction. Each returns
// the first parameter t >= 0 at which the sphere touches the target; t is 0
// when the sphere already overlaps it.

const parallelEpsilon = 1e-12

func sqrtf(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

// raySphere intersects origin + t*dir with a sphere of radius r.
func raySphere(origin, dir, center math.Vec3, r float32) (float32, bool) {
	m := origin.Sub(center)
	c := m.LengthSquared() - r*r
	if c <= 0 {
		return 0, true
	}
	b := m.Dot(dir)
	if b > 0 {
		// Outside and moving away
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - sqrtf(disc)
	if t < 0 {
		t = 0
	}
	return t, true
}

// rayCapsule intersects origin + t*dir with the capsule around segment ab.
func rayCapsule(origin, dir, a, b math.Vec3, r float32) (float32, bool) {
	ab := b.Sub(a)
	length := ab.Length()
	if length < math.DirectionEpsilon {
		return raySphere(origin, dir, a, r)
	}
	if math.ClosestPointOnSegment(origin, a, b).Sub(origin).LengthSquared() <= r*r {
		return 0, true
	}
	u := ab.Scale(1 / length)

	best := float32(gomath.MaxFloat32)
	found := false

	// Cylinder wall
	m := origin.Sub(a)
	mPerp := m.Sub(u.Scale(m.Dot(u)))
	dPerp := dir.Sub(u.Scale(dir.Dot(u)))
	qa := dPerp.LengthSquared()
	if qa > parallelEpsilon {
		qb := mPerp.Dot(dPerp)
		qc := mPerp.LengthSquared() - r*r
		disc := qb*qb - qa*qc
		if disc >= 0 {
			t := (-qb - sqrtf(disc)) / qa
			if t >= 0 {
				s := m.Add(dir.Scale(t)).Dot(u)
				if s >= 0 && s <= length {
					best, found = t, true
				}
			}
		}
	}

	// End caps
	for _, end := range [2]math.Vec3{a, b} {
		if t, ok := raySphere(origin, dir, end, r); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}

// sweepSphereTriangle sweeps a sphere against a single triangle.
func sweepSphereTriangle(origin, dir math.Vec3, r float32, tri math.Triangle) (float32, bool) {
	if tri.ClosestPoint(origin).Sub(origin).LengthSquared() <= r*r {
		return 0, true
	}

	if n0, ok := tri.Normal(); ok {
		n := n0
		dist := origin.Sub(tri[0]).Dot(n)
		if dist < 0 {
			n = n.Neg()
			dist = -dist
		}
		if denom := dir.Dot(n); denom < 0 {
			t := (dist - r) / -denom
			if t >= 0 {
				p := origin.Add(dir.Scale(t)).Sub(n.Scale(r))
				if insideTriangle(p, tri, n0) {
					return t, true
				}
			}
		}
	}

	// Edges and vertices
	best := float32(gomath.MaxFloat32)
	found := false
	for i := 0; i < 3; i++ {
		if t, ok := rayCapsule(origin, dir, tri[i], tri[(i+1)%3], r); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}

// insideTriangle reports whether p, lying on the triangle's plane, is inside
// its edges.
func insideTriangle(p math.Vec3, tri math.Triangle, n math.Vec3) bool {
	const eps = -1e-6
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		if b.Sub(a).Cross(p.Sub(a)).Dot(n) < eps {
			return false
		}
	}
	return true
}

// sweepSphereAABB sweeps a sphere against a box: a ray against the box grown
// by r, refined against the rounded edges and corners.
func sweepSphereAABB(origin, dir math.Vec3, r float32, box AABB) (float32, bool) {
	if box.ClosestPoint(origin).Sub(origin).LengthSquared() <= r*r {
		return 0, true
	}

	tmin, _, hit := box.Grow(r).IntersectRay(origin, dir)
	if !hit {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	p := origin.Add(dir.Scale(tmin))

	var below, above, outside int
	for axis := 0; axis < 3; axis++ {
		switch {
		case p.Axis(axis) < box.Min.Axis(axis):
			below |= 1 << axis
			outside++
		case p.Axis(axis) > box.Max.Axis(axis):
			above |= 1 << axis
			outside++
		}
	}

	// corner picks the box vertex selected by the below/above masks; axes
	// in neither mask take the value from fill.
	corner := func(fill math.Vec3) math.Vec3 {
		c := fill
		for axis := 0; axis < 3; axis++ {
			if below&(1<<axis) != 0 {
				c = c.WithAxis(axis, box.Min.Axis(axis))
			} else if above&(1<<axis) != 0 {
				c = c.WithAxis(axis, box.Max.Axis(axis))
			}
		}
		return c
	}

	switch outside {
	case 0, 1:
		return tmin, true
	case 2:
		a := corner(box.Min)
		b := corner(box.Max)
		return rayCapsule(origin, dir, a, b, r)
	default:
		c := corner(math.Vec3{})
		best := float32(gomath.MaxFloat32)
		found := false
		for axis := 0; axis < 3; axis++ {
			other := box.Min.Axis(axis)
			if below&(1<<axis) != 0 {
				other = box.Max.Axis(axis)
			}
			if t, ok := rayCapsule(origin, dir, c, c.WithAxis(axis, other), r); ok && t < best {
				best, found = t, true
			}
		}
		return best, found
	}
}
