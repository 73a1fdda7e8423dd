// Package highlevel implements KD-CBS: the conflict-based search that
// resolves per-agent low-level plans against each other by repeatedly
// finding the earliest footprint conflict and branching into two
// constrained replans, one per agent involved (spec.md §4.7). It is
// grounded directly on original_source's KD_CBS.cpp solve(), with its
// conflict-resolution branch — stubbed there as exit(1) — completed the
// way spec.md §4.7 describes: two children per conflict, each replanning
// exactly one of the two agents under one additional constraint.
package highlevel

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"kdcbs/internal/conflict"
	"kdcbs/internal/constraint"
	"kdcbs/internal/geometry"
	"kdcbs/internal/motion"
	"kdcbs/internal/priorityqueue"
	"kdcbs/internal/problem"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/trajectory"
	"kdcbs/internal/world"
)

var log = logrus.WithField("module", "highlevel")

// Status tags the outcome of one high-level search.
type Status int

const (
	// StatusSolved means Result.Plan is conflict-free for every agent.
	StatusSolved Status = iota
	// StatusInfeasible means the conflict tree was exhausted without
	// finding a conflict-free assignment.
	StatusInfeasible
	// StatusInvalidStart means no root could be built: either an agent has
	// no feasible initial state, or the agents declare mismatched Δt
	// (spec.md §4.8, §7 — InvalidStart is its own reported outcome, not a
	// Go error, and not folded into StatusInfeasible).
	StatusInvalidStart
	// StatusTimeout means the termination condition fired, or
	// Options.MaxExpansions was reached, before the search converged;
	// Result.Plan is the plan of the most recently popped node and may
	// still contain conflicts.
	StatusTimeout
)

// Options tunes policy decisions the core spec leaves open.
type Options struct {
	// StrictUnionConstraints switches the constraint-construction policy
	// from "the other agent's footprint at the conflict's first instant"
	// to an axis-aligned bounding union of the other agent's footprint
	// across the whole conflict episode. Off by default: the simpler
	// single-footprint policy is cheaper to check and sufficient for the
	// conflict to disappear on replan in practice.
	StrictUnionConstraints bool
	// MaxExpansions bounds the number of ConflictNodes popped from the
	// queue, as a backstop against runaway search when the termination
	// condition never fires.
	MaxExpansions int
	// DetectorDt is the grid step used to interpolate trajectories before
	// conflict detection.
	DetectorDt float64
	LowLevel    motion.Config
}

// DefaultOptions returns reasonable defaults.
func DefaultOptions() Options {
	return Options{
		MaxExpansions: 2000,
		DetectorDt:    0.1,
		LowLevel:      motion.DefaultConfig(),
	}
}

// ConflictNode is one node of the high-level search tree: a candidate
// per-agent plan, the constraint set it was built under, and its cost.
type ConflictNode struct {
	ID          uuid.UUID
	Plan        map[world.AgentID]*trajectory.PathControl
	Constraints *constraint.Set
	Cost        float64
}

// Input is everything the high-level planner needs: the world, every
// agent's planning problem, and the pose extractor shared by every
// concrete state type in play.
type Input struct {
	World    *world.World
	Problems map[world.AgentID]problem.AgentPlanningProblem
	Extract  trajectory.PoseExtractor
}

// Result is the artifact returned by Solve (spec.md §6's "returned
// artifact"): a status tag plus the best plan found under it.
type Result struct {
	Status     Status
	Plan       map[world.AgentID]*trajectory.PathControl
	Cost       float64
	Expansions int
}

// TerminationCondition is polled once per ConflictNode expansion.
type TerminationCondition func() bool

// Planner runs KD-CBS over a fixed World and per-agent planning problems.
// RNG is shared across every agent's low-level replan. The Engine methods
// the planners sample through (PTrue, UniformRange) take no lock; sharing
// is safe because KD-CBS runs strictly single-threaded (spec.md §5).
type Planner struct {
	Input   Input
	Checker *svc.StaticValidityChecker
	RNG     *randengine.Engine
	Options Options
}

// Solve runs KD-CBS to completion, timeout, or exhaustion.
func (p *Planner) Solve(tc TerminationCondition) (Result, error) {
	agents := p.Input.World.Agents()

	if !p.dtAgrees(agents) {
		log.Warn("agents declare mismatched Δt; refusing to plan a root")
		return Result{Status: StatusInvalidStart}, nil
	}

	root, invalidStart, err := p.planIndependently(agents, constraint.Empty())
	if err != nil {
		return Result{Status: StatusInfeasible}, err
	}
	if invalidStart {
		log.Warn("an agent has no feasible initial state; nothing to search")
		return Result{Status: StatusInvalidStart}, nil
	}

	queue := priorityqueue.New[*ConflictNode]()
	queue.Push(root, root.Cost)

	lastPopped := root
	expansions := 0

	for queue.Len() > 0 {
		if tc() {
			return Result{Status: StatusTimeout, Plan: lastPopped.Plan, Cost: lastPopped.Cost, Expansions: expansions}, nil
		}
		if expansions >= p.Options.MaxExpansions {
			return Result{Status: StatusTimeout, Plan: lastPopped.Plan, Cost: lastPopped.Cost, Expansions: expansions}, nil
		}

		curr, _ := queue.Pop()
		lastPopped = curr
		expansions++

		c, found := conflict.Detect(curr.Plan, agents, p.Input.Extract, p.Options.DetectorDt)
		if !found {
			log.WithField("expansions", expansions).Info("kd-cbs converged on a conflict-free plan")
			return Result{Status: StatusSolved, Plan: curr.Plan, Cost: curr.Cost, Expansions: expansions}, nil
		}

		log.WithFields(logrus.Fields{
			"node":    curr.ID,
			"agentA":  c.AgentA,
			"agentB":  c.AgentB,
			"tStart":  c.TimeStart,
			"tEnd":    c.TimeEnd,
		}).Debug("conflict found, branching")

		for _, involved := range [2]world.AgentID{c.AgentA, c.AgentB} {
			other := c.AgentB
			if involved == c.AgentB {
				other = c.AgentA
			}
			child, ok := p.branch(curr, involved, other, *c)
			if ok {
				queue.Push(child, child.Cost)
			}
		}
	}

	return Result{Status: StatusInfeasible, Expansions: expansions}, nil
}

// dtAgrees reports whether every agent's planning problem declares the
// same Δt (spec.md §4.7: "every per-agent planning problem declares the
// same Δt; otherwise return an invalid-start status"). A world with fewer
// than two agents trivially agrees.
func (p *Planner) dtAgrees(agents []world.Agent) bool {
	if len(agents) == 0 {
		return true
	}
	want := p.Input.Problems[agents[0].ID].Dt()
	for _, agent := range agents[1:] {
		if p.Input.Problems[agent.ID].Dt() != want {
			return false
		}
	}
	return true
}

// planIndependently builds the root ConflictNode by planning every agent
// with no cross-agent constraints. Per spec.md §4.8, "per-agent planning
// failure at root" is a fatal invalid-start, not an ordinary infeasible
// result: if any agent's start is statically invalid (motion.ErrInvalidStart)
// or cannot even grow an approximate path (motion.StatusNone), the second
// return value is true and the root is unusable. A genuine Go error
// (caller misconfiguration) is still propagated separately.
func (p *Planner) planIndependently(agents []world.Agent, constraints *constraint.Set) (*ConflictNode, bool, error) {
	plan := make(map[world.AgentID]*trajectory.PathControl, len(agents))
	cost := 0.0

	for _, agent := range agents {
		path, status, err := p.planAgent(agent, constraints)
		if err != nil {
			if errors.Is(err, motion.ErrInvalidStart) {
				return nil, true, nil
			}
			return nil, false, err
		}
		if status == motion.StatusNone {
			return nil, true, nil
		}
		plan[agent.ID] = path
		cost += path.TotalDuration()
	}

	return &ConflictNode{ID: uuid.New(), Plan: plan, Constraints: constraints, Cost: cost}, false, nil
}

// planAgent runs the low-level planner for one agent under a constraint
// set, building its AgentPlanningProblem's low-level Planner on the fly.
func (p *Planner) planAgent(agent world.Agent, constraints *constraint.Set) (*trajectory.PathControl, motion.Status, error) {
	prob := p.Input.Problems[agent.ID]
	planner := &motion.Planner{
		Problem:     prob,
		Checker:     p.Checker,
		Constraints: constraints,
		Agent:       agent,
		Extract:     motion.PoseExtractor(p.Input.Extract),
		RNG:         p.RNG,
		Config:      p.Options.LowLevel,
	}
	return planner.Plan(func() bool { return false })
}

// branch builds one child ConflictNode: involved gets one additional
// constraint derived from other's footprint over the conflict episode,
// and only involved is replanned; every other agent's path is carried
// over unchanged from the parent (spec.md §4.7: "each conflict spawns two
// children, each adding one constraint to one of the two involved agents
// and replanning that agent").
func (p *Planner) branch(parent *ConflictNode, involved, other world.AgentID, c conflict.Conflict) (*ConflictNode, bool) {
	region := p.constraintRegion(parent, other, c)
	newConstraints := parent.Constraints.Add(constraint.Constraint{
		Agent:     involved,
		Region:    region,
		TimeStart: c.TimeStart,
		TimeEnd:   c.TimeEnd,
	})

	agent, ok := p.Input.World.Agent(involved)
	if !ok {
		return nil, false
	}
	path, status, err := p.planAgent(agent, newConstraints)
	if err != nil || status == motion.StatusNone {
		return nil, false
	}

	plan := make(map[world.AgentID]*trajectory.PathControl, len(parent.Plan))
	cost := 0.0
	for id, segment := range parent.Plan {
		if id == involved {
			continue
		}
		plan[id] = segment
		cost += segment.TotalDuration()
	}
	plan[involved] = path
	cost += path.TotalDuration()

	return &ConflictNode{ID: uuid.New(), Plan: plan, Constraints: newConstraints, Cost: cost}, true
}

// constraintRegion builds the new constraint's forbidden region from the
// other agent's footprint. Under the default policy it is the other
// agent's footprint at the conflict's first instant (spec.md §9 Open
// Question 1, "simplest policy"); under Options.StrictUnionConstraints it
// is the bounding union of that agent's footprint across the whole
// conflict episode.
func (p *Planner) constraintRegion(parent *ConflictNode, other world.AgentID, c conflict.Conflict) geometry.Polygon {
	otherAgent, _ := p.Input.World.Agent(other)
	w, h := otherAgent.Shape()
	otherPath := parent.Plan[other]
	samples := trajectory.Interpolate(otherPath, p.Input.Extract, p.Options.DetectorDt)

	if !p.Options.StrictUnionConstraints {
		for _, s := range samples {
			if s.Time >= c.TimeStart {
				return geometry.Footprint(s.X, s.Y, s.Theta, w, h)
			}
		}
		return geometry.Polygon{}
	}

	var swept []geometry.Polygon
	for _, s := range samples {
		if s.Time >= c.TimeStart && s.Time <= c.TimeEnd {
			swept = append(swept, geometry.Footprint(s.X, s.Y, s.Theta, w, h))
		}
	}
	return geometry.BoundingUnion(swept)
}
