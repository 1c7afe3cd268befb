// Package movement implements the runner's locomotion: steering, the ground
// probe, gravity and the multi-bounce slide that keeps the player moving
// along surfaces instead of stopping on them.
package movement

import (
	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/pkg/math"
)

// Actions is the player input for one tick.
type Actions struct {
	Move     math.Vec2 // X steers, Y is unused
	FastFall bool
}

// ShapeCaster sweeps a shape through the collision world.
type ShapeCaster interface {
	CastShape(shape physics.Capsule, origin math.Vec3, rotation math.Quat, direction math.Vec3, maxDistance float32, filter physics.Filter) (physics.Hit, bool)
}
