package movement

import (
	"github.com/Faultbox/downhill/pkg/math"
)

// Steer turns velocity around +Y by turnRate radians per second in the
// direction of the move input. Positive move.X turns right.
func Steer(velocity math.Vec3, move math.Vec2, turnRate, dt float32) math.Vec3 {
	if move.X == 0 {
		return velocity
	}
	angle := -math.Signum(move.X) * turnRate * dt
	return math.RotateY(angle).TransformDirection(velocity)
}
