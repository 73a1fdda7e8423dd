// Package geometry implements the axis-aligned 2D polygon kernel: building
// an oriented rectangle footprint from a pose and testing two polygons for
// disjointness. It has exactly one predicate the rest of the planner core
// relies on: Disjoint.
package geometry

import "math"

// Polygon is a small closed ring of vertices plus its precomputed AABB.
// Agent footprints are always 4 corners + a closing vertex (5 entries);
// static obstacles may carry an arbitrary ring.
type Polygon struct {
	Vertices []Vec2
	MinX, MinY, MaxX, MaxY float64
}

// Vec2 is a bare 2D point, defined here so this package has no dependency
// beyond the standard library (the geometry kernel is a leaf package).
type Vec2 struct {
	X, Y float64
}

// NewPolygon builds a Polygon from an open or closed vertex ring, closing
// it if necessary and computing its AABB.
func NewPolygon(vertices []Vec2) Polygon {
	if len(vertices) == 0 {
		return Polygon{}
	}
	ring := vertices
	first, last := vertices[0], vertices[len(vertices)-1]
	if first.X != last.X || first.Y != last.Y {
		ring = append(append([]Vec2{}, vertices...), first)
	}
	p := Polygon{Vertices: ring}
	p.MinX, p.MinY = ring[0].X, ring[0].Y
	p.MaxX, p.MaxY = ring[0].X, ring[0].Y
	for _, v := range ring {
		p.MinX = math.Min(p.MinX, v.X)
		p.MaxX = math.Max(p.MaxX, v.X)
		p.MinY = math.Min(p.MinY, v.Y)
		p.MaxY = math.Max(p.MaxY, v.Y)
	}
	return p
}

// Footprint returns the oriented closed rectangle occupied by a rigid body
// of width w and length h at pose (x, y, theta): the axis-aligned rectangle
// [-w/2, w/2] x [-h/2, h/2] rotated by theta around the origin, then
// translated to (x, y). Vertex order: bottom-left, bottom-right, top-right,
// top-left, closing back to bottom-left (spec.md §3).
func Footprint(x, y, theta, w, h float64) Polygon {
	halfW, halfH := w/2, h/2
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	local := [4]Vec2{
		{X: -halfW, Y: -halfH}, // bottom-left
		{X: halfW, Y: -halfH},  // bottom-right
		{X: halfW, Y: halfH},   // top-right
		{X: -halfW, Y: halfH},  // top-left
	}

	vertices := make([]Vec2, 5)
	for i, c := range local {
		vertices[i] = Vec2{
			X: x + c.X*cosT - c.Y*sinT,
			Y: y + c.X*sinT + c.Y*cosT,
		}
	}
	vertices[4] = vertices[0]
	return NewPolygon(vertices)
}

// aabbDisjoint reports whether the polygons' bounding boxes cannot overlap.
func aabbDisjoint(p, q Polygon) bool {
	return p.MaxX < q.MinX || q.MaxX < p.MinX || p.MaxY < q.MinY || q.MaxY < p.MinY
}

// Disjoint reports whether two closed polygons share no point, boundaries
// included — points on a shared edge count as non-disjoint, matching
// boost::geometry::disjoint's semantics in original_source. Short-circuits
// on an AABB test before the full separating-axis evaluation (spec.md §9
// Design Notes). The separating-axis test is exact for convex polygons,
// such as footprints; for a non-convex obstacle ring it can report two
// polygons as overlapping when they share no point.
func Disjoint(p, q Polygon) bool {
	if len(p.Vertices) < 2 || len(q.Vertices) < 2 {
		return true
	}
	if aabbDisjoint(p, q) {
		return true
	}
	// Separating Axis Theorem over both polygons' edge normals: if any axis
	// separates the projected vertex ranges, the polygons are disjoint.
	if separatingAxisExists(p, q) || separatingAxisExists(q, p) {
		return true
	}
	return false
}

// separatingAxisExists tests the edge normals of subject against both
// polygons' vertices for a separating axis.
func separatingAxisExists(subject, other Polygon) bool {
	n := len(subject.Vertices) - 1 // vertices is closed (last == first)
	for i := 0; i < n; i++ {
		a := subject.Vertices[i]
		b := subject.Vertices[i+1]
		axis := Vec2{X: -(b.Y - a.Y), Y: b.X - a.X}
		if axis.X == 0 && axis.Y == 0 {
			continue
		}
		minA, maxA := projectExtent(subject, axis)
		minB, maxB := projectExtent(other, axis)
		if maxA < minB || maxB < minA {
			return true
		}
	}
	return false
}

// BoundingUnion returns the axis-aligned rectangle covering every vertex of
// every polygon given. It is an over-approximation of the true union, not
// the union itself — used by the high-level planner's strict-union
// constraint policy to turn a swept sequence of footprints over a conflict
// episode into one constraint region without a general polygon-union
// routine.
func BoundingUnion(polys []Polygon) Polygon {
	if len(polys) == 0 {
		return Polygon{}
	}
	minX, minY := polys[0].MinX, polys[0].MinY
	maxX, maxY := polys[0].MaxX, polys[0].MaxY
	for _, p := range polys[1:] {
		minX = math.Min(minX, p.MinX)
		minY = math.Min(minY, p.MinY)
		maxX = math.Max(maxX, p.MaxX)
		maxY = math.Max(maxY, p.MaxY)
	}
	return NewPolygon([]Vec2{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	})
}

func projectExtent(p Polygon, axis Vec2) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	n := len(p.Vertices) - 1
	for i := 0; i < n; i++ {
		v := p.Vertices[i]
		d := v.X*axis.X + v.Y*axis.Y
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}
