package movement

import "github.com/Faultbox/downhill/pkg/math"

// Gravity accelerates airborne bodies downward.
type Gravity struct {
	G                  float32
	Multiplier         float32
	FastFallMultiplier float32
}

// Apply returns velocity after dt seconds of gravity. Grounded bodies are
// left alone. There is no terminal velocity.
func (g Gravity) Apply(velocity math.Vec3, grounded, fastFall bool, dt float32) math.Vec3 {
	if grounded {
		return velocity
	}
	mult := g.Multiplier
	if fastFall {
		mult = g.FastFallMultiplier
	}
	velocity.Y -= g.G * mult * dt
	return velocity
}
