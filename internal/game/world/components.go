package world

import (
	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/internal/engine/terrain"
	"github.com/Faultbox/downhill/pkg/math"
)

// Transform places an entity in the world.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
}

// Velocity is the linear velocity in units per second.
type Velocity struct {
	Linear math.Vec3
}

// LastFrameVelocity is the velocity the entity ended the previous tick with.
type LastFrameVelocity struct {
	Linear math.Vec3
}

// Grounded holds the result of the last ground probe. It persists across
// ticks so landings can be told apart from staying on the ground.
type Grounded struct {
	ShapeCast bool
}

// Collider links an entity to its body in the collision world.
type Collider struct {
	Handle physics.Handle
}

// Player marks the single controllable runner.
type Player struct {
	Shape physics.Capsule
}

// LandChunk is one streamed terrain tile.
type LandChunk struct {
	Index uint32
	Mesh  *terrain.Mesh
}

// Obstacle is a static box spawned on a chunk surface.
type Obstacle struct {
	Chunk       uint32
	HalfExtents math.Vec3
}

// PassThrough marks colliders the slide cast ignores.
type PassThrough struct{}
