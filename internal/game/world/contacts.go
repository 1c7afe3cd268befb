package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/pkg/math"
)

// ContactKind classifies what the player touched.
type ContactKind int

const (
	ContactObstacle ContactKind = iota
)

func (k ContactKind) String() string {
	switch k {
	case ContactObstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// Contact is one body the player overlapped this tick.
type Contact struct {
	Kind     ContactKind
	Entity   ecs.Entity
	Handle   physics.Handle
	Position math.Vec3
}

// PlayerContacts returns the obstacles the player currently overlaps, in
// handle order. Terrain contact is not reported.
func (w *World) PlayerContacts() []Contact {
	p := w.Player()
	hits := w.physics.Overlaps(
		p.Player.Shape,
		p.Transform.Position,
		p.Transform.Rotation,
		physics.ExcludeHandles(p.Collider.Handle),
	)

	var out []Contact
	for _, h := range hits {
		e, ok := w.byHandle[h]
		if !ok || !w.obstacleMap.Has(e) {
			continue
		}
		out = append(out, Contact{
			Kind:     ContactObstacle,
			Entity:   e,
			Handle:   h,
			Position: w.transformMap.Get(e).Position,
		})
	}
	return out
}
