// Package physics provides the collision world the player moves through:
// static triangle-mesh and cuboid colliders, kinematic capsules, shape casts
// and overlap queries. It does not simulate rigid bodies.
package physics

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/downhill/pkg/math"
)

// Handle identifies a collider in a World. The zero handle is never issued.
type Handle uint32

// Kind is the collider geometry.
type Kind int

// contactSlop widens the triangle search around a contact point to absorb
// float32 error in the sweep parameter.
const contactSlop = 1e-3

const (
	KindTriMesh Kind = iota
	KindCuboid
	KindCapsule
)

func (k Kind) String() string {
	switch k {
	case KindTriMesh:
		return "trimesh"
	case KindCuboid:
		return "cuboid"
	case KindCapsule:
		return "capsule"
	default:
		return "unknown"
	}
}

// Hit is the first contact of a shape cast.
type Hit struct {
	Handle   Handle
	Distance float32   // distance travelled along the cast direction
	Point    math.Vec3 // contact point on the hit collider
	Normal   math.Vec3 // unit normal of the hit collider at Point, facing the caster
}

// Filter excludes colliders from queries.
type Filter struct {
	excluded map[Handle]struct{}
}

// ExcludeHandles returns a filter that skips the given colliders.
func ExcludeHandles(handles ...Handle) Filter {
	f := Filter{excluded: make(map[Handle]struct{}, len(handles))}
	for _, h := range handles {
		f.excluded[h] = struct{}{}
	}
	return f
}

// Excludes reports whether h is filtered out.
func (f Filter) Excludes(h Handle) bool {
	_, ok := f.excluded[h]
	return ok
}

type body struct {
	handle Handle
	kind   Kind
	bounds AABB

	// KindTriMesh
	triangles []math.Triangle
	triBounds []AABB

	// KindCuboid uses bounds directly

	// KindCapsule
	capsule  Capsule
	position math.Vec3
	rotation math.Quat
}

// World is a flat collision index. Bodies are kept in handle order so that
// ties between equally distant hits resolve the same way every run.
type World struct {
	bodies []*body
	next   Handle
}

// NewWorld creates an empty collision world.
func NewWorld() *World {
	return &World{}
}

// Len returns the number of colliders.
func (w *World) Len() int {
	return len(w.bodies)
}

func (w *World) insert(b *body) Handle {
	w.next++
	b.handle = w.next
	w.bodies = append(w.bodies, b)
	return b.handle
}

func (w *World) find(h Handle) (int, bool) {
	i := sort.Search(len(w.bodies), func(i int) bool { return w.bodies[i].handle >= h })
	if i < len(w.bodies) && w.bodies[i].handle == h {
		return i, true
	}
	return 0, false
}

// ConstructStaticCollider builds a static triangle-mesh collider from
// local-space triangles placed by transform.
func (w *World) ConstructStaticCollider(triangles []math.Triangle, transform math.Mat4) Handle {
	b := &body{
		kind:      KindTriMesh,
		bounds:    EmptyAABB(),
		triangles: make([]math.Triangle, len(triangles)),
		triBounds: make([]AABB, len(triangles)),
	}
	for i, t := range triangles {
		wt := math.Triangle{
			transform.TransformPoint(t[0]),
			transform.TransformPoint(t[1]),
			transform.TransformPoint(t[2]),
		}
		b.triangles[i] = wt
		b.triBounds[i] = NewAABB(wt[0], wt[1]).Extend(wt[2])
		b.bounds = b.bounds.Union(b.triBounds[i])
	}
	return w.insert(b)
}

// AddCuboid adds a static axis-aligned box collider.
func (w *World) AddCuboid(center, halfExtents math.Vec3) Handle {
	return w.insert(&body{kind: KindCuboid, bounds: BoxFromCenter(center, halfExtents)})
}

// AddKinematicCapsule adds a capsule whose position is driven by SetPosition.
func (w *World) AddKinematicCapsule(c Capsule, position math.Vec3) Handle {
	rot := math.QuatIdentity()
	return w.insert(&body{
		kind:     KindCapsule,
		bounds:   c.Bounds(position, rot),
		capsule:  c,
		position: position,
		rotation: rot,
	})
}

// SetPosition moves a kinematic capsule. It reports false for unknown handles
// and for static colliders.
func (w *World) SetPosition(h Handle, position math.Vec3) bool {
	i, ok := w.find(h)
	if !ok || w.bodies[i].kind != KindCapsule {
		return false
	}
	b := w.bodies[i]
	b.position = position
	b.bounds = b.capsule.Bounds(position, b.rotation)
	return true
}

// Remove deletes a collider. It reports whether the handle existed.
func (w *World) Remove(h Handle) bool {
	i, ok := w.find(h)
	if !ok {
		return false
	}
	w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
	return true
}

// Kind returns the geometry kind of a collider.
func (w *World) Kind(h Handle) (Kind, bool) {
	i, ok := w.find(h)
	if !ok {
		return 0, false
	}
	return w.bodies[i].kind, true
}

// Bounds returns the world-space bounding box of a collider.
func (w *World) Bounds(h Handle) (AABB, bool) {
	i, ok := w.find(h)
	if !ok {
		return AABB{}, false
	}
	return w.bodies[i].bounds, true
}

// CastShape sweeps shape from origin along direction for at most maxDistance
// and returns the first collider it touches. A shape already touching a
// collider reports a hit at distance 0. direction need not be normalized; a
// zero direction never hits.
func (w *World) CastShape(shape Capsule, origin math.Vec3, rotation math.Quat, direction math.Vec3, maxDistance float32, filter Filter) (Hit, bool) {
	dir, ok := direction.Direction()
	if !ok || maxDistance < 0 {
		return Hit{}, false
	}

	offsets := shape.sphereOffsets(rotation)
	swept := shape.Bounds(origin, rotation).Union(shape.Bounds(origin.Add(dir.Scale(maxDistance)), rotation))

	best := Hit{Distance: float32(gomath.MaxFloat32)}
	found := false
	for _, b := range w.bodies {
		if filter.Excludes(b.handle) || !b.bounds.Overlaps(swept) {
			continue
		}
		for _, off := range offsets {
			center := origin.Add(off)
			t, ok := b.sweepSphere(center, dir, shape.Radius, maxDistance)
			if !ok || t > maxDistance || t >= best.Distance {
				continue
			}
			point, normal := b.contact(center.Add(dir.Scale(t)), dir, shape.Radius)
			best = Hit{Handle: b.handle, Distance: t, Point: point, Normal: normal}
			found = true
		}
	}
	return best, found
}

// Overlaps returns the colliders the shape touches at origin, in handle order.
func (w *World) Overlaps(shape Capsule, origin math.Vec3, rotation math.Quat, filter Filter) []Handle {
	offsets := shape.sphereOffsets(rotation)
	bounds := shape.Bounds(origin, rotation)
	r2 := shape.Radius * shape.Radius

	var out []Handle
	for _, b := range w.bodies {
		if filter.Excludes(b.handle) || !b.bounds.Overlaps(bounds) {
			continue
		}
		for _, off := range offsets {
			c := origin.Add(off)
			if p, ok := b.closestPoint(c, shape.Radius); ok && p.Sub(c).LengthSquared() <= r2 {
				out = append(out, b.handle)
				break
			}
		}
	}
	return out
}

func (b *body) sweepSphere(center, dir math.Vec3, r, maxDistance float32) (float32, bool) {
	switch b.kind {
	case KindCuboid:
		return sweepSphereAABB(center, dir, r, b.bounds)
	case KindCapsule:
		a, c := b.capsule.Segment(b.position, b.rotation)
		return rayCapsule(center, dir, a, c, r+b.capsule.Radius)
	default:
		swept := NewAABB(center, center.Add(dir.Scale(maxDistance))).Grow(r)
		best := float32(gomath.MaxFloat32)
		found := false
		for i, tri := range b.triangles {
			if !b.triBounds[i].Overlaps(swept) {
				continue
			}
			if t, ok := sweepSphereTriangle(center, dir, r, tri); ok && t < best {
				best, found = t, true
			}
		}
		return best, found
	}
}

// contact returns the surface point and outward normal for a sphere of
// radius r centred at p that a sweep along dir stopped at.
func (b *body) contact(p, dir math.Vec3, r float32) (point, normal math.Vec3) {
	point, ok := b.closestPoint(p, r+contactSlop)
	if ok {
		if n, ok := p.Sub(point).Direction(); ok {
			return point, n
		}
		return point, b.fallbackNormal(p, dir)
	}
	normal = b.fallbackNormal(p, dir)
	return p.Sub(normal.Scale(r)), normal
}

// closestPoint returns the point on the collider surface (or inside it, for
// boxes) nearest to p. Triangle meshes only consider triangles within reach
// of p and report false when none is.
func (b *body) closestPoint(p math.Vec3, reach float32) (math.Vec3, bool) {
	switch b.kind {
	case KindCuboid:
		return b.bounds.ClosestPoint(p), true
	case KindCapsule:
		a, c := b.capsule.Segment(b.position, b.rotation)
		q := math.ClosestPointOnSegment(p, a, c)
		if d, ok := p.Sub(q).Direction(); ok {
			return q.Add(d.Scale(b.capsule.Radius)), true
		}
		return q, true
	default:
		near := NewAABB(p, p).Grow(reach)
		var best math.Vec3
		bestDist := float32(gomath.MaxFloat32)
		found := false
		for i, tri := range b.triangles {
			if !b.triBounds[i].Overlaps(near) {
				continue
			}
			q := tri.ClosestPoint(p)
			if d := q.Sub(p).LengthSquared(); d < bestDist {
				best, bestDist, found = q, d, true
			}
		}
		return best, found
	}
}

// fallbackNormal is used when the contact center coincides with the surface
// point, so the separation vector has no direction, or when float error left
// no triangle within reach of it.
func (b *body) fallbackNormal(p, dir math.Vec3) math.Vec3 {
	if b.kind == KindTriMesh {
		near := NewAABB(p, p).Grow(contactSlop)
		bestDist := float32(gomath.MaxFloat32)
		var normal math.Vec3
		found := false
		for i, tri := range b.triangles {
			if !b.triBounds[i].Overlaps(near) {
				continue
			}
			if d := tri.ClosestPoint(p).Sub(p).LengthSquared(); d < bestDist {
				if n, ok := tri.Normal(); ok {
					bestDist, normal, found = d, n, true
				}
			}
		}
		if found {
			if normal.Dot(dir) > 0 {
				normal = normal.Neg()
			}
			return normal
		}
	}
	return dir.Neg()
}
