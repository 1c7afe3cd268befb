package movement

import (
	"go.uber.org/zap"

	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/pkg/math"
)

// Each contact pushes the accumulated slide and the next cast origin off the
// surface by a fraction of the normal.
const (
	slideNormalBias  = 1.0 / 20
	originNormalBias = 1.0 / 60
)

// SlideResult describes one resolved move.
type SlideResult struct {
	Velocity   math.Vec3 // corrected velocity
	Slide      math.Vec3 // accumulated displacement the velocity was aimed along
	Bounces    int       // casts that hit something
	Degenerate bool      // slide had no direction; velocity left unchanged
}

// SlideResolver redirects velocity along the surfaces it would run into.
type SlideResolver struct {
	MaxBounces int
	Caster     ShapeCaster
	Log        *zap.Logger
}

// Resolve casts the move the velocity would make over dt and returns a
// velocity of the same speed aimed along the accumulated slide.
func (r SlideResolver) Resolve(shape physics.Capsule, position math.Vec3, rotation math.Quat, velocity math.Vec3, dt float32, filter physics.Filter) SlideResult {
	direction, ok := velocity.Direction()
	if !ok {
		return SlideResult{Velocity: velocity}
	}

	speed := velocity.Length()
	remaining := speed * dt
	origin := position
	var slide math.Vec3
	bounces := 0

	for range r.MaxBounces {
		hit, ok := r.Caster.CastShape(shape, origin, rotation, direction, remaining, filter)
		if !ok {
			slide = slide.Add(direction.Scale(remaining))
			break
		}
		bounces++

		slide = slide.Add(direction.Scale(hit.Distance))
		hitPos := origin.Add(direction.Scale(hit.Distance))
		n := hit.Normal

		approach, ok := hitPos.Sub(origin).Direction()
		if !ok {
			approach = direction
		}
		upDown := approach.Scale(remaining).Cross(n)
		tangent := n.Cross(upDown)
		remaining = tangent.Length()

		next, ok := tangent.Direction()
		if !ok {
			break
		}

		slide = slide.Add(n.Scale(slideNormalBias))
		origin = hitPos.Add(n.Scale(originNormalBias))
		direction = next
	}

	res := SlideResult{Slide: slide, Bounces: bounces}
	dir, ok := slide.Direction()
	if !ok {
		if r.Log != nil {
			r.Log.Warn("slide has no direction, keeping velocity",
				zap.Int("bounces", bounces),
				zap.Float32("speed", speed))
		}
		res.Velocity = velocity
		res.Degenerate = true
		return res
	}
	res.Velocity = dir.Scale(speed)
	return res
}
