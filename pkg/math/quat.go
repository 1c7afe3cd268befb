package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(float64(halfAngle))),
	}
}

// IsZero reports whether q is the zero value, which callers treat as identity.
func (q Quat) IsZero() bool {
	return q == Quat{}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate rotates v by q. The zero quaternion rotates nothing.
func (q Quat) Rotate(v Vec3) Vec3 {
	if q.IsZero() {
		return v
	}
	q = q.Normalize()
	// v' = v + 2w(u x v) + 2(u x (u x v)), u = vector part
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
