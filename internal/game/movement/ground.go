package movement

import (
	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/pkg/math"
)

// LandingQuality grades how well a landing matched the slope.
type LandingQuality int

const (
	LandingMeh LandingQuality = iota
	LandingOk
	LandingGood
	LandingPerfect
)

func (q LandingQuality) String() string {
	switch q {
	case LandingPerfect:
		return "perfect"
	case LandingGood:
		return "good"
	case LandingOk:
		return "ok"
	default:
		return "meh"
	}
}

// ClassifyLanding scores the incoming direction against the slope tangent
// along the forward axis. A velocity with no direction scores 0.
func ClassifyLanding(normal, lastVelocity math.Vec3) (LandingQuality, float32) {
	tangent := normal.Cross(math.UnitX)
	dir, ok := lastVelocity.Direction()
	if !ok {
		return LandingMeh, 0
	}
	score := tangent.Dot(dir)
	return LandingQualityFor(score), score
}

// LandingQualityFor grades a landing score. Each tier needs a score strictly
// above its threshold.
func LandingQualityFor(score float32) LandingQuality {
	switch {
	case score > 0.99:
		return LandingPerfect
	case score > 0.98:
		return LandingGood
	case score > 0.95:
		return LandingOk
	default:
		return LandingMeh
	}
}

// GroundProbe decides whether the player stands on something.
type GroundProbe struct {
	Distance float32
}

// GroundResult is the outcome of one probe.
type GroundResult struct {
	Grounded bool
	Hit      physics.Hit

	// Set only on the tick the player goes from airborne to grounded.
	Landed  bool
	Quality LandingQuality
	Score   float32
}

// Probe casts shape straight down. wasGrounded is last tick's result; a
// landing is graded only when it flips from false to true.
func (p GroundProbe) Probe(caster ShapeCaster, shape physics.Capsule, position math.Vec3, rotation math.Quat, filter physics.Filter, wasGrounded bool, lastVelocity math.Vec3) GroundResult {
	hit, ok := caster.CastShape(shape, position, rotation, math.Down, p.Distance, filter)
	if !ok {
		return GroundResult{}
	}

	res := GroundResult{Grounded: true, Hit: hit}
	if !wasGrounded {
		res.Landed = true
		res.Quality, res.Score = ClassifyLanding(hit.Normal, lastVelocity)
	}
	return res
}
