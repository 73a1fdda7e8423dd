// Package svc implements the static validity checker: the one predicate
// that tells the low-level planner whether a pose is free of the
// workspace bounds and the static obstacle field (spec.md §4.3), grounded
// on original_source's RealVectorStateSpaceSVC interface and the teacher's
// car.go collision lookup.
package svc

import (
	"kdcbs/internal/geometry"
	"kdcbs/internal/world"
)

// StaticValidityChecker tests an agent footprint against workspace bounds
// and static obstacles. It holds no mutable state and is safe to share
// across concurrently running low-level planner instances.
type StaticValidityChecker struct {
	w *world.World
}

// New builds a StaticValidityChecker over the given world.
func New(w *world.World) *StaticValidityChecker {
	return &StaticValidityChecker{w: w}
}

// IsValid reports whether the oriented footprint of width w and height h at
// pose (x, y, theta) lies entirely within the workspace bounds and is
// disjoint from every static obstacle.
func (c *StaticValidityChecker) IsValid(x, y, theta, w, h float64) bool {
	bounds := c.w.Bounds()
	footprint := geometry.Footprint(x, y, theta, w, h)
	for _, v := range footprint.Vertices {
		if !bounds.Contains(v.X, v.Y) {
			return false
		}
	}
	for _, obstacle := range c.w.StaticObstacles() {
		if !geometry.Disjoint(footprint, obstacle) {
			return false
		}
	}
	return true
}

// IsValidAgent is a convenience wrapper that looks up the agent's footprint
// dimensions from the world.
func (c *StaticValidityChecker) IsValidAgent(id world.AgentID, x, y, theta float64) bool {
	agent, ok := c.w.Agent(id)
	if !ok {
		return false
	}
	w, h := agent.Shape()
	return c.IsValid(x, y, theta, w, h)
}
