package math

// Triangle is three vertices with counter-clockwise winding.
type Triangle [3]Vec3

// Normal returns the unit face normal, and false for degenerate triangles.
func (t Triangle) Normal() (Vec3, bool) {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Direction()
}

// Area returns the triangle area.
func (t Triangle) Area() float32 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Length() / 2
}

// Translate returns the triangle moved by offset.
func (t Triangle) Translate(offset Vec3) Triangle {
	return Triangle{t[0].Add(offset), t[1].Add(offset), t[2].Add(offset)}
}

// Barycentric returns u*a + v*b + w*c for the triangle's vertices.
func (t Triangle) Barycentric(u, v, w float32) Vec3 {
	return t[0].Scale(u).Add(t[1].Scale(v)).Add(t[2].Scale(w))
}

// ClosestPoint returns the point on the triangle nearest to p.
func (t Triangle) ClosestPoint(p Vec3) Vec3 {
	a, b, c := t[0], t[1], t[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// ClosestPointOnSegment returns the point on segment ab nearest to p.
func ClosestPointOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Sub(a)
	denom := ab.LengthSquared()
	if denom == 0 {
		return a
	}
	s := p.Sub(a).Dot(ab) / denom
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	return a.Add(ab.Scale(s))
}
