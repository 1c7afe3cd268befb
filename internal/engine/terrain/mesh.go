package terrain

import (
	"fmt"

	"github.com/Faultbox/downhill/pkg/math"
)

// MeshConfig describes the chunk grid and how noise displaces it.
type MeshConfig struct {
	Size            float32 // chunk edge length in world units
	Subdivisions    int     // extra cuts per edge; Subdivisions+2 vertices per row
	Amplitude       float32 // world height of a noise sample of 1
	HorizontalScale float32 // world units per noise unit along X and Z
	VerticalScale   float32 // world units per noise unit along Y
}

// Validate checks the grid can be built.
func (c MeshConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %v", c.Size)
	}
	if c.Subdivisions < 0 {
		return fmt.Errorf("subdivisions must not be negative, got %d", c.Subdivisions)
	}
	if c.HorizontalScale == 0 || c.VerticalScale == 0 {
		return fmt.Errorf("noise scales must be non-zero, got %v/%v", c.HorizontalScale, c.VerticalScale)
	}
	return nil
}

// Builder generates chunk meshes from a noise field.
type Builder struct {
	cfg   MeshConfig
	noise *NoiseField
}

// NewBuilder creates a chunk mesh builder.
func NewBuilder(cfg MeshConfig, noise *NoiseField) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("terrain mesh config: %w", err)
	}
	if noise == nil {
		return nil, fmt.Errorf("terrain mesh config: nil noise field")
	}
	return &Builder{cfg: cfg, noise: noise}, nil
}

// Config returns the builder's mesh configuration.
func (b *Builder) Config() MeshConfig {
	return b.cfg
}

// SampleHeight returns the terrain height at a chunk-local point of the chunk
// whose forward offset is offset. Chunk-local z maps to world z - offset, so
// every chunk reads the same continuous noise domain.
func (b *Builder) SampleHeight(localX, localY, localZ, offset float32) float32 {
	p := math.Vec3{
		X: localX / b.cfg.HorizontalScale,
		Y: localY / b.cfg.VerticalScale,
		Z: (localZ - offset) / b.cfg.HorizontalScale,
	}
	return b.noise.Sample(p) * b.cfg.Amplitude
}

// Build creates the mesh for the chunk at the given forward offset
// (index * Size). The mesh stays in chunk-local space; place it with
// Translate(0, 0, -offset).
func (b *Builder) Build(offset float32) *Mesh {
	size := b.cfg.Size
	columns := b.cfg.Subdivisions + 2
	step := size / float32(columns-1)
	half := size / 2

	vertices := make([]Vertex, 0, columns*columns)
	bounds := Bounds{
		Min: math.Vec3{X: 1e10, Y: 1e10, Z: 1e10},
		Max: math.Vec3{X: -1e10, Y: -1e10, Z: -1e10},
	}

	for z := 0; z < columns; z++ {
		for x := 0; x < columns; x++ {
			// Flat plane first, then displace the elevation axis
			pos := math.Vec3{X: -half + float32(x)*step, Z: -half + float32(z)*step}
			// Pin the far edges so neighbouring chunks share exact seam positions
			if x == columns-1 {
				pos.X = half
			}
			if z == columns-1 {
				pos.Z = half
			}
			pos.Y = b.SampleHeight(pos.X, pos.Y, pos.Z, offset)

			updateBounds(&bounds, pos)
			vertices = append(vertices, Vertex{
				Position: pos,
				TexCoord: [2]float32{float32(x) / float32(columns-1), float32(z) / float32(columns-1)},
			})
		}
	}

	quads := columns - 1
	indices := make([]uint32, 0, quads*quads*6)
	for z := 0; z < quads; z++ {
		for x := 0; x < quads; x++ {
			i := uint32(z*columns + x)
			row := uint32(columns)
			// Counter-clockwise seen from above
			indices = append(indices,
				i, i+row, i+1,
				i+1, i+row, i+row+1,
			)
		}
	}

	mesh := &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
		Columns:  columns,
		Size:     size,
	}
	SmoothNormals(mesh)
	return mesh
}

// SmoothNormals recomputes vertex normals as the area-weighted average of the
// faces sharing each vertex.
func SmoothNormals(mesh *Mesh) {
	sums := make([]math.Vec3, len(mesh.Vertices))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		ia, ib, ic := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		a := mesh.Vertices[ia].Position
		b := mesh.Vertices[ib].Position
		c := mesh.Vertices[ic].Position
		// Unnormalized cross product weighs by area
		face := b.Sub(a).Cross(c.Sub(a))
		sums[ia] = sums[ia].Add(face)
		sums[ib] = sums[ib].Add(face)
		sums[ic] = sums[ic].Add(face)
	}

	for i := range mesh.Vertices {
		n, ok := sums[i].Direction()
		if !ok {
			n = math.Up
		}
		mesh.Vertices[i].Normal = n
	}
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}
