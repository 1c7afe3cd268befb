// Package math provides the float32 vector, quaternion and matrix types shared
// by terrain generation, collision queries and player movement.
package math

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Common axis vectors. The world is Y-up and the player travels along -Z.
var (
	Zero3   = Vec3{}
	UnitX   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Down    = Vec3{Y: -1}
	Forward = Vec3{Z: -1}
)

// DirectionEpsilon is the shortest length a vector may have and still be
// turned into a direction.
const DirectionEpsilon float32 = 1e-6

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns the squared magnitude.
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSquared())))
}

// Normalize returns a unit vector, or the zero vector when v has no length.
func (v Vec3) Normalize() Vec3 {
	d, _ := v.Direction()
	return d
}

// Direction returns v scaled to unit length. ok is false when v is shorter
// than DirectionEpsilon or is not finite; callers must not use the result then.
func (v Vec3) Direction() (d Vec3, ok bool) {
	l := v.Length()
	if !(l > DirectionEpsilon) || math.IsInf(float64(l), 0) {
		return Vec3{}, false
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}, true
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{minf(v.X, other.X), minf(v.Y, other.Y), minf(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{maxf(v.X, other.X), maxf(v.Y, other.Y), maxf(v.Z, other.Z)}
}

// Axis returns component i (0=X, 1=Y, 2=Z).
func (v Vec3) Axis(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithAxis returns a copy of v with component i replaced.
func (v Vec3) WithAxis(i int, value float32) Vec3 {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether every component of v is within tol of other.
func (v Vec3) ApproxEqual(other Vec3, tol float32) bool {
	d := v.Sub(other)
	return absf(d.X) <= tol && absf(d.Y) <= tol && absf(d.Z) <= tol
}

// XZ returns the XZ components as Vec2.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
