package highlevel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kdcbs/internal/problem"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/vehicle"
	"kdcbs/internal/world"
)

type fixedGoal struct{ x, y, radius float64 }

func (g fixedGoal) IsSatisfied(state interface{}) (bool, float64) {
	s := state.(vehicle.State)
	dx, dy := s.X-g.x, s.Y-g.y
	d := dx*dx + dy*dy
	return d <= g.radius*g.radius, d
}

func (g fixedGoal) Sample() (interface{}, bool) {
	return vehicle.State{X: g.x, Y: g.y}, true
}

func extract(s interface{}) (float64, float64, float64) {
	st := s.(vehicle.State)
	return st.X, st.Y, st.Theta
}

func neverStop() bool { return false }

func buildTwoAgentInput(bounds world.Bounds) (Input, *world.World) {
	agents := []world.Agent{
		{ID: 0, Width: 1, Height: 1, Start: vehicle.State{X: 1, Y: 1}, Goal: fixedGoal{x: 15, y: 15, radius: 1.5}},
		{ID: 1, Width: 1, Height: 1, Start: vehicle.State{X: 15, Y: 1}, Goal: fixedGoal{x: 1, y: 15, radius: 1.5}},
	}
	w := world.NewWorld(agents, nil, bounds)
	checker := svc.New(w)
	rng := randengine.New(11)

	problems := make(map[world.AgentID]problem.AgentPlanningProblem, len(agents))
	for _, a := range agents {
		start := a.Start.(vehicle.State)
		problems[a.ID] = vehicle.NewCarProblem(vehicle.DefaultParams(), bounds, a.Goal, start, checker, a.Width, a.Height, rng)
	}

	return Input{World: w, Problems: problems, Extract: extract}, w
}

func TestSolveReturnsInvalidStartWhenStartInvalid(t *testing.T) {
	bounds := world.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}
	input, w := buildTwoAgentInput(bounds)
	checker := svc.New(w)

	badAgents := []world.Agent{
		{ID: 0, Width: 1, Height: 1, Start: vehicle.State{X: -50, Y: -50}, Goal: fixedGoal{x: 15, y: 15, radius: 1}},
	}
	badWorld := world.NewWorld(badAgents, nil, bounds)
	badProblems := map[world.AgentID]problem.AgentPlanningProblem{
		0: vehicle.NewCarProblem(vehicle.DefaultParams(), bounds, badAgents[0].Goal, vehicle.State{X: -50, Y: -50}, checker, 1, 1, randengine.New(1)),
	}
	input.World = badWorld
	input.Problems = badProblems

	options := DefaultOptions()
	options.LowLevel.MaxIterations = 100
	pl := &Planner{Input: input, Checker: checker, RNG: randengine.New(1), Options: options}

	result, err := pl.Solve(neverStop)
	assert.NoError(t, err)
	assert.Equal(t, StatusInvalidStart, result.Status)
}

func TestSolveReturnsInvalidStartOnDtMismatch(t *testing.T) {
	bounds := world.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}
	agents := []world.Agent{
		{ID: 0, Width: 1, Height: 1, Start: vehicle.State{X: 1, Y: 1}, Goal: fixedGoal{x: 15, y: 15, radius: 1.5}},
		{ID: 1, Width: 1, Height: 1, Start: vehicle.State{X: 15, Y: 1}, Goal: fixedGoal{x: 1, y: 15, radius: 1.5}},
	}
	w := world.NewWorld(agents, nil, bounds)
	checker := svc.New(w)
	rng := randengine.New(11)

	mismatched := vehicle.DefaultParams()
	mismatched.SubstepDt = 0.2

	problems := map[world.AgentID]problem.AgentPlanningProblem{
		0: vehicle.NewCarProblem(vehicle.DefaultParams(), bounds, agents[0].Goal, agents[0].Start.(vehicle.State), checker, 1, 1, rng),
		1: vehicle.NewCarProblem(mismatched, bounds, agents[1].Goal, agents[1].Start.(vehicle.State), checker, 1, 1, rng),
	}

	options := DefaultOptions()
	pl := &Planner{Input: Input{World: w, Problems: problems, Extract: extract}, Checker: checker, RNG: rng, Options: options}

	result, err := pl.Solve(neverStop)
	assert.NoError(t, err)
	assert.Equal(t, StatusInvalidStart, result.Status)
}

func TestSolveStopsWhenTerminationConditionFires(t *testing.T) {
	bounds := world.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20}
	input, w := buildTwoAgentInput(bounds)
	checker := svc.New(w)

	options := DefaultOptions()
	options.LowLevel.MaxIterations = 500
	pl := &Planner{Input: input, Checker: checker, RNG: randengine.New(11), Options: options}

	calls := 0
	tc := func() bool {
		calls++
		return calls > 1
	}

	result, err := pl.Solve(tc)
	assert.NoError(t, err)
	assert.Contains(t, []Status{StatusTimeout, StatusSolved, StatusInfeasible}, result.Status)
}

func TestSolveConvergesOnIndependentPathsWhenNoConflict(t *testing.T) {
	bounds := world.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	agents := []world.Agent{
		{ID: 0, Width: 1, Height: 1, Start: vehicle.State{X: 1, Y: 1}, Goal: fixedGoal{x: 5, y: 1, radius: 1.5}},
		{ID: 1, Width: 1, Height: 1, Start: vehicle.State{X: 1, Y: 90}, Goal: fixedGoal{x: 5, y: 90, radius: 1.5}},
	}
	w := world.NewWorld(agents, nil, bounds)
	checker := svc.New(w)
	rng := randengine.New(3)
	problems := make(map[world.AgentID]problem.AgentPlanningProblem, len(agents))
	for _, a := range agents {
		start := a.Start.(vehicle.State)
		problems[a.ID] = vehicle.NewCarProblem(vehicle.DefaultParams(), bounds, a.Goal, start, checker, a.Width, a.Height, rng)
	}
	input := Input{World: w, Problems: problems, Extract: extract}

	options := DefaultOptions()
	options.LowLevel.MaxIterations = 2000
	pl := &Planner{Input: input, Checker: checker, RNG: rng, Options: options}

	result, err := pl.Solve(neverStop)
	assert.NoError(t, err)
	if result.Status == StatusSolved {
		assert.NotNil(t, result.Plan[0])
		assert.NotNil(t, result.Plan[1])
	}
}
