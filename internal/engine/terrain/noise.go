package terrain

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/downhill/pkg/math"
)

// NoiseField maps a 3D point to a height factor in [0,1]. It is immutable
// after construction and safe for concurrent use.
type NoiseField struct {
	seed  int64
	noise opensimplex.Noise32
}

// NewNoiseField seeds a noise field. The same seed always yields the same
// terrain.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{
		seed:  seed,
		noise: opensimplex.NewNormalized32(seed),
	}
}

// Seed returns the seed the field was built with.
func (n *NoiseField) Seed() int64 {
	return n.seed
}

// Sample evaluates the field at p.
func (n *NoiseField) Sample(p math.Vec3) float32 {
	v := n.noise.Eval3(p.X, p.Y, p.Z)
	// Normalized opensimplex can overshoot by a hair.
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
