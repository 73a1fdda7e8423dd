// Package constraint implements the time-bounded polygonal constraint and
// the persistent, structurally-shared constraint set every ConflictNode
// carries (spec.md §3, §9 Design Notes: "persistent constraint sets").
// Each child node appends exactly one constraint without copying its
// parent's list, grounded on KD_CBS.cpp's per-branch constraint
// construction in its conflict-resolution step.
package constraint

import (
	"github.com/samber/lo"

	"kdcbs/internal/geometry"
	"kdcbs/internal/world"
)

// Constraint forbids one agent from occupying Region at any time in
// [TimeStart, TimeEnd].
type Constraint struct {
	Agent     world.AgentID
	Region    geometry.Polygon
	TimeStart float64
	TimeEnd   float64
}

// Overlaps reports whether t falls inside the constraint's time window.
func (c Constraint) Overlaps(t float64) bool {
	return t >= c.TimeStart && t <= c.TimeEnd
}

// Set is a persistent, append-only constraint set. Each Set links to a
// parent Set and holds only the constraints added at its own level, so
// a branch of ConflictNodes in the high-level search tree shares every
// ancestor's constraints without copying them (spec.md §9: "no node ever
// copies an ancestor's constraint list").
type Set struct {
	parent *Set
	own    []Constraint
}

// Empty returns the root constraint set: no constraints, no parent.
func Empty() *Set {
	return &Set{}
}

// Add returns a new Set containing every constraint in s plus c, without
// mutating s. O(1) in the number of ancestor constraints.
func (s *Set) Add(c Constraint) *Set {
	return &Set{parent: s, own: []Constraint{c}}
}

// All walks the parent chain and returns every constraint in the set,
// root-first.
func (s *Set) All() []Constraint {
	if s == nil {
		return nil
	}
	var chain []*Set
	for n := s; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	var out []Constraint
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].own...)
	}
	return out
}

// ForAgent returns every constraint in the set that applies to agent id.
func (s *Set) ForAgent(id world.AgentID) []Constraint {
	return lo.Filter(s.All(), func(c Constraint, _ int) bool {
		return c.Agent == id
	})
}

// Violates reports whether the oriented footprint of width w and height h
// at pose (x, y, theta) and time t intersects any constraint that applies
// to agent id and is active at t.
func (s *Set) Violates(id world.AgentID, x, y, theta, w, h, t float64) bool {
	footprint := geometry.Footprint(x, y, theta, w, h)
	return lo.SomeBy(s.ForAgent(id), func(c Constraint) bool {
		return c.Overlaps(t) && !geometry.Disjoint(footprint, c.Region)
	})
}
