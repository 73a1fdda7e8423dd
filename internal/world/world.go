// Package world holds the ordered set of agents, the static obstacles, and
// the workspace bounds that every planner in this module reads but never
// mutates (spec.md §5: "world, agents, static obstacles... read-only and
// safely shared").
package world

import "kdcbs/internal/geometry"

// AgentID identifies one agent within a World's ordered agent list.
type AgentID int

// GoalRegion is a sampleable subset of state space with a membership test.
// state is an opaque interface{} because the CORE treats dynamics-specific
// state representations as external (spec.md §6); concrete
// AgentPlanningProblem implementations (internal/problem, internal/vehicle)
// narrow it to their own state type.
type GoalRegion interface {
	// IsSatisfied reports whether state lies in the goal region, and if
	// not, a distance estimate used for approximate-solution tracking.
	IsSatisfied(state interface{}) (bool, float64)
	// Sample draws a state from the goal region. ok is false if the region
	// is not sampleable (spec.md §4.4 step 1 falls back to a uniform
	// sample in that case).
	Sample() (state interface{}, ok bool)
}

// Agent is immutable per-agent data: identity, footprint dimensions, an
// opaque dynamics handle, a start state, and a goal region.
type Agent struct {
	ID              AgentID
	Name            string
	Width, Height   float64
	DynamicsHandle  interface{}
	Start           interface{}
	Goal            GoalRegion
}

// Shape returns the agent's footprint dimensions (w, h).
func (a Agent) Shape() (float64, float64) {
	return a.Width, a.Height
}

// Bounds is the rectangular workspace extent.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) lies within the bounds, inclusive.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// World is the ordered set of agents plus static obstacle polygons and
// workspace bounds shared read-only across every planner instance.
type World struct {
	agentList        []Agent
	staticObstacles  []geometry.Polygon
	bounds           Bounds
}

// NewWorld builds a World from an ordered agent list, static obstacle
// polygons, and workspace bounds.
func NewWorld(agents []Agent, staticObstacles []geometry.Polygon, bounds Bounds) *World {
	return &World{
		agentList:       agents,
		staticObstacles: staticObstacles,
		bounds:          bounds,
	}
}

// Agents returns the ordered agent list.
func (w *World) Agents() []Agent {
	return w.agentList
}

// Agent returns the agent with the given id, and whether it was found.
func (w *World) Agent(id AgentID) (Agent, bool) {
	if int(id) < 0 || int(id) >= len(w.agentList) {
		return Agent{}, false
	}
	return w.agentList[id], true
}

// StaticObstacles returns the static obstacle polygons.
func (w *World) StaticObstacles() []geometry.Polygon {
	return w.staticObstacles
}

// Bounds returns the workspace bounds.
func (w *World) Bounds() Bounds {
	return w.bounds
}
