// Package terrain builds the procedurally displaced ground chunks the player
// runs over, and samples points on their surface.
package terrain

import "github.com/Faultbox/downhill/pkg/math"

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord [2]float32
}

// Mesh holds one chunk's geometry in chunk-local space, ready for GPU upload
// or collider construction. Vertices form a Columns x Columns grid, row-major
// along +Z.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
	Columns  int     // vertices per grid row
	Size     float32 // edge length of the square chunk
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Triangles expands the index buffer into triangles.
// It panics if the index buffer is not a whole number of triangles.
func (m *Mesh) Triangles() []math.Triangle {
	if len(m.Indices)%3 != 0 {
		panic("terrain: index count is not a multiple of 3")
	}
	tris := make([]math.Triangle, 0, len(m.Indices)/3)
	for i := 0; i < len(m.Indices); i += 3 {
		tris = append(tris, math.Triangle{
			m.Vertices[m.Indices[i]].Position,
			m.Vertices[m.Indices[i+1]].Position,
			m.Vertices[m.Indices[i+2]].Position,
		})
	}
	return tris
}

// Vertex returns the grid vertex at column x, row z.
func (m *Mesh) Vertex(x, z int) Vertex {
	return m.Vertices[z*m.Columns+x]
}
