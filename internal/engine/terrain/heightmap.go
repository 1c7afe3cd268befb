package terrain

// HeightAt returns the bilinearly interpolated surface height of the mesh at
// a chunk-local XZ position. Positions outside the chunk clamp to its edge.
func HeightAt(mesh *Mesh, localX, localZ float32) float32 {
	if mesh == nil || mesh.Columns < 2 {
		return 0
	}

	cells := mesh.Columns - 1
	step := mesh.Size / float32(cells)
	half := mesh.Size / 2

	cellFX := (localX + half) / step
	cellFZ := (localZ + half) / step

	cellX := int(cellFX)
	cellZ := int(cellFZ)

	// Clamp to valid range
	if cellX < 0 {
		cellX = 0
	}
	if cellZ < 0 {
		cellZ = 0
	}
	if cellX > cells-1 {
		cellX = cells - 1
	}
	if cellZ > cells-1 {
		cellZ = cells - 1
	}

	// Get fractional position within cell (0-1)
	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	sw := mesh.Vertex(cellX, cellZ).Position.Y
	se := mesh.Vertex(cellX+1, cellZ).Position.Y
	nw := mesh.Vertex(cellX, cellZ+1).Position.Y
	ne := mesh.Vertex(cellX+1, cellZ+1).Position.Y

	south := sw*(1-fracX) + se*fracX
	north := nw*(1-fracX) + ne*fracX
	return south*(1-fracZ) + north*fracZ
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
