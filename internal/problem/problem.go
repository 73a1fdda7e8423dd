// Package problem defines the abstract boundary the low-level planner
// plans against: state sampling, directed control sampling, propagation,
// and goal membership (spec.md §6). The CORE never depends on a concrete
// dynamics model — only on this interface set — mirroring the
// StateSpace/ControlSpace/StatePropagator split original_source borrows
// from OMPL in constraintRRT.cpp.
package problem

import "kdcbs/internal/world"

// StateSampler draws a state uniformly from the reachable state space,
// used by the low-level planner's exploration step (spec.md §4.4 step 1).
type StateSampler interface {
	Sample() interface{}
}

// DirectedControlSampler proposes a control and a duration intended to
// drive from a "nearest" tree state toward a sampled target state
// (spec.md §4.4 step 3).
type DirectedControlSampler interface {
	SampleTowards(nearest, target interface{}) (control interface{}, duration float64)
}

// Propagator advances a state under a control for a duration by
// sub-stepping dynamics at a fixed resolution, checking static validity at
// every sub-step (spec.md §4.4 step 4). It reports the resulting state,
// the sequence of intermediate states visited (oldest first, excluding the
// starting state, including the final state), and whether the whole
// sub-stepped path stayed statically valid. The caller (internal/motion)
// is responsible for checking the intermediate states against the
// agent's time-bounded constraint set; Propagator itself only applies
// dynamics and static validity.
type Propagator interface {
	Propagate(state interface{}, control interface{}, duration float64) (result interface{}, intermediates []interface{}, valid bool)
}

// DistanceFunc measures a planner-meaningful distance between two states,
// used to pick the nearest tree node to a sample (spec.md §4.4 step 2).
type DistanceFunc func(a, b interface{}) float64

// AgentPlanningProblem bundles everything the low-level planner needs for
// one agent: its state space operations, dynamics, and goal, plus its
// start state. Concrete vehicle models (internal/vehicle) implement this;
// the low-level planner (internal/motion) only ever calls through it.
type AgentPlanningProblem interface {
	Start() interface{}
	Goal() world.GoalRegion
	Distance(a, b interface{}) float64
	Sampler() StateSampler
	ControlSampler() DirectedControlSampler
	Propagator() Propagator
	// Dt returns the propagation step size this problem integrates dynamics
	// at (spec.md §6's per-agent "Δt" field). The high-level planner
	// requires every agent in a joint search to declare the same Δt before
	// it will plan a root (spec.md §4.7/§4.8).
	Dt() float64
}
