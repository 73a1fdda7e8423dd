// Package motion implements the low-level constrained kinodynamic
// planner: one per-agent RRT that grows a control tree toward sampled
// targets, respects a time-bounded polygonal constraint set, and reports
// an exact, approximate, or no solution (spec.md §4.4). The tree is
// arena-indexed — every node is an integer handle into a flat slice
// rather than a pointer — so a cleared planner can reuse its arena's
// backing array in O(1) (spec.md §9 Design Notes), following the
// handle-over-pointer shape of brychanrobot-go-rrt-star's Node type and
// the propagate/validate split of original_source's constraintRRT.cpp.
package motion

import (
	"errors"

	"github.com/sirupsen/logrus"

	"kdcbs/internal/constraint"
	"kdcbs/internal/problem"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/trajectory"
	"kdcbs/internal/world"
)

var log = logrus.WithField("module", "motion")

// Status tags the outcome of one low-level planning attempt. It is a
// plain enum, not an error: a search that legitimately finds no path is
// not a Go error condition (spec.md §7 — "no exceptions required, a
// tagged result suffices").
type Status int

const (
	// StatusExact means the returned PathControl reaches the goal region.
	StatusExact Status = iota
	// StatusApproximate means the search exhausted its budget before
	// reaching the goal; the returned PathControl ends at the tree node
	// closest to the goal seen during the search.
	StatusApproximate
	// StatusNone means not even an approximate path was grown: no node
	// came closer to the goal than the start state, or no root could be
	// grown at all.
	StatusNone
)

// ErrInvalidStart is returned when the agent's start state itself fails
// the static validity checker; no search is attempted.
var ErrInvalidStart = errors.New("motion: start state is statically invalid")

// ErrCallerError is returned when the caller asks for a planner
// configuration this package refuses to run: requesting full intermediate
// substep states while the agent also carries a non-empty constraint set.
// Those two options interact in a way no legitimate caller relies on
// (recording every substep of a constrained replan multiplies result size
// for no benefit its consumer has ever needed), so it is rejected
// synchronously rather than silently ignored.
var ErrCallerError = errors.New("motion: IntermediateStates is incompatible with a non-empty constraint set")

// PoseExtractor reads the planar pose out of a dynamics-specific state, so
// the planner can evaluate the static validity checker and constraint set
// without knowing the concrete state type.
type PoseExtractor func(state interface{}) (x, y, theta float64)

// Config is the low-level planner's tunable knob set. Every node's
// propagated substeps are always retained on the returned PathControl
// (trajectory.Interpolate needs them to sample the vehicle's true swept
// path, spec.md §4.5); IntermediateStates instead only gates the
// ErrCallerError check below, flagging a caller that asked for substeps on
// a constrained replan.
type Config struct {
	MaxIterations      int
	GoalBias           float64
	IntermediateStates bool
}

// DefaultConfig returns reasonable low-level planner defaults.
func DefaultConfig() Config {
	return Config{MaxIterations: 5000, GoalBias: 0.1}
}

// TerminationCondition is polled once per iteration; when it returns true
// the search stops and reports its best result so far (spec.md §5:
// "cancellable via an externally polled termination condition").
type TerminationCondition func() bool

type node struct {
	parent        int
	state         interface{}
	control       interface{}
	duration      float64
	intermediates []interface{}
	timeStart     float64
}

// arena is the flat, integer-indexed backing store for one search's tree.
// Clear reuses the slice's capacity rather than reallocating.
type arena struct {
	nodes []node
}

func (a *arena) add(n node) int {
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1
}

func (a *arena) clear() {
	a.nodes = a.nodes[:0]
}

// Planner runs the low-level constrained kinodynamic RRT for one agent.
type Planner struct {
	Problem     problem.AgentPlanningProblem
	Checker     *svc.StaticValidityChecker
	Constraints *constraint.Set
	Agent       world.Agent
	Extract     PoseExtractor
	RNG         *randengine.Engine
	Config      Config

	arena arena
}

// Reset clears the planner's arena so it can be reused for another
// replanning attempt without reallocating.
func (p *Planner) Reset() {
	p.arena.clear()
}

// Plan grows the control tree until it reaches the goal region, the
// termination condition fires, or MaxIterations is exhausted, following
// spec.md §4.4 steps 1-8:
//  1. sample a target state (goal-biased);
//  2. find the tree's nearest node to the target;
//  3. sample a directed control from the nearest node toward the target,
//     discarding it if its duration is not positive;
//  4. propagate the control, sub-stepping and checking static validity;
//  5. check every sub-step against the agent's constraint set;
//  6. on success, add the new node and update the best-goal-distance node;
//  7. on goal satisfaction, reconstruct and return an exact path;
//  8. on termination without an exact path, return the best approximate
//     path found, or StatusNone if no node came closer to the goal than
//     the start state.
func (p *Planner) Plan(tc TerminationCondition) (*trajectory.PathControl, Status, error) {
	if p.Config.IntermediateStates && len(p.Constraints.All()) > 0 {
		return nil, StatusNone, ErrCallerError
	}

	p.arena.clear()
	w, h := p.Agent.Shape()
	start := p.Problem.Start()
	sx, sy, sth := p.Extract(start)
	if !p.Checker.IsValid(sx, sy, sth, w, h) {
		log.WithField("agent", p.Agent.ID).Warn("start state is statically invalid, refusing to plan")
		return nil, StatusNone, ErrInvalidStart
	}

	rootIdx := p.arena.add(node{parent: -1, state: start, timeStart: 0})
	bestIdx := rootIdx
	_, bestDist := p.Problem.Goal().IsSatisfied(start)

	for i := 0; i < p.Config.MaxIterations; i++ {
		if tc() {
			break
		}

		target := p.sampleTarget()
		nearestIdx := p.nearest(target)
		nearestNode := p.arena.nodes[nearestIdx]

		control, duration := p.Problem.ControlSampler().SampleTowards(nearestNode.state, target)
		if duration <= 0 {
			continue
		}
		result, intermediates, valid := p.Problem.Propagator().Propagate(nearestNode.state, control, duration)
		if !valid {
			continue
		}
		if p.violatesConstraints(nearestNode.timeStart, duration, intermediates) {
			continue
		}

		idx := p.arena.add(node{
			parent:        nearestIdx,
			state:         result,
			control:       control,
			duration:      duration,
			intermediates: intermediates,
			timeStart:     nearestNode.timeStart + duration,
		})

		satisfied, dist := p.Problem.Goal().IsSatisfied(result)
		if dist < bestDist {
			bestDist = dist
			bestIdx = idx
		}
		if satisfied {
			return p.reconstruct(idx), StatusExact, nil
		}
	}

	if bestIdx == rootIdx {
		log.WithField("agent", p.Agent.ID).Info("no node came closer to the goal than the start")
		return nil, StatusNone, nil
	}
	log.WithFields(logrus.Fields{"agent": p.Agent.ID, "nodes": len(p.arena.nodes)}).Info("returning best approximate path, goal not reached")
	return p.reconstruct(bestIdx), StatusApproximate, nil
}

// sampleTarget draws a goal-biased sample: with probability GoalBias, a
// point from the goal region if it is sampleable; otherwise a point from
// the ambient state space.
func (p *Planner) sampleTarget() interface{} {
	if p.RNG.PTrue(p.Config.GoalBias) {
		if goalState, ok := p.Problem.Goal().Sample(); ok {
			return goalState
		}
	}
	return p.Problem.Sampler().Sample()
}

// nearest does a linear scan of the arena for the node closest to target
// under the problem's distance function, matching constraintRRT.cpp's
// unindexed nearest-neighbour search.
func (p *Planner) nearest(target interface{}) int {
	best := 0
	bestDist := p.Problem.Distance(p.arena.nodes[0].state, target)
	for i := 1; i < len(p.arena.nodes); i++ {
		d := p.Problem.Distance(p.arena.nodes[i].state, target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// violatesConstraints checks every sub-stepped intermediate state the
// propagator visited against the agent's constraint set, assigning each
// intermediate its absolute time by even subdivision of duration.
func (p *Planner) violatesConstraints(timeStart, duration float64, intermediates []interface{}) bool {
	if len(intermediates) == 0 {
		return false
	}
	w, h := p.Agent.Shape()
	dt := duration / float64(len(intermediates))
	for i, s := range intermediates {
		x, y, theta := p.Extract(s)
		t := timeStart + dt*float64(i+1)
		if p.Constraints.Violates(p.Agent.ID, x, y, theta, w, h, t) {
			return true
		}
	}
	return false
}

// reconstruct walks the parent chain from idx back to the root and builds
// a PathControl in root-to-idx order.
func (p *Planner) reconstruct(idx int) *trajectory.PathControl {
	var chain []int
	for i := idx; i != -1; i = p.arena.nodes[i].parent {
		chain = append(chain, i)
	}
	// chain is idx-to-root; reverse to root-to-idx.
	root := chain[len(chain)-1]
	path := trajectory.NewPathControl(p.arena.nodes[root].state)
	for i := len(chain) - 2; i >= 0; i-- {
		n := p.arena.nodes[chain[i]]
		// Append cannot fail here: Plan discards any control whose duration
		// is not positive before this node was added.
		_ = path.Append(n.control, n.state, n.duration, n.intermediates)
	}
	return path
}
