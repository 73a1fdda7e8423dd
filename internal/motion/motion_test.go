package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kdcbs/internal/constraint"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/vehicle"
	"kdcbs/internal/world"
)

type carGoal struct{ x, y, radius float64 }

func (g carGoal) IsSatisfied(state interface{}) (bool, float64) {
	s := state.(vehicle.State)
	dx, dy := s.X-g.x, s.Y-g.y
	d := dx*dx + dy*dy
	return d <= g.radius*g.radius, d
}

func (g carGoal) Sample() (interface{}, bool) {
	return vehicle.State{X: g.x, Y: g.y}, true
}

func extract(s interface{}) (float64, float64, float64) {
	st := s.(vehicle.State)
	return st.X, st.Y, st.Theta
}

func newPlanner(agent world.Agent, goal world.GoalRegion, start vehicle.State, w *world.World) *Planner {
	checker := svc.New(w)
	carProblem := vehicle.NewCarProblem(vehicle.DefaultParams(), w.Bounds(), goal, start, checker, agent.Width, agent.Height, randengine.New(7))
	return &Planner{
		Problem:     carProblem,
		Checker:     checker,
		Constraints: constraint.Empty(),
		Agent:       agent,
		Extract:     extract,
		RNG:         randengine.New(7),
		Config:      Config{MaxIterations: 2000, GoalBias: 0.2},
	}
}

func neverStop() bool { return false }

func TestPlanRejectsInvalidStart(t *testing.T) {
	w := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	agent := world.Agent{ID: 0, Width: 1, Height: 1}
	goal := carGoal{x: 5, y: 5, radius: 1}
	pl := newPlanner(agent, goal, vehicle.State{X: -5, Y: -5}, w)

	_, status, err := pl.Plan(neverStop)
	assert.ErrorIs(t, err, ErrInvalidStart)
	assert.Equal(t, StatusNone, status)
}

func TestPlanRejectsIntermediateStatesWithConstraints(t *testing.T) {
	w := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	agent := world.Agent{ID: 0, Width: 1, Height: 1}
	goal := carGoal{x: 5, y: 5, radius: 1}
	pl := newPlanner(agent, goal, vehicle.State{X: 1, Y: 1}, w)
	pl.Config.IntermediateStates = true
	pl.Constraints = constraint.Empty().Add(constraint.Constraint{Agent: 0})

	_, status, err := pl.Plan(neverStop)
	assert.ErrorIs(t, err, ErrCallerError)
	assert.Equal(t, StatusNone, status)
}

func TestPlanFindsExactSolution(t *testing.T) {
	w := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20})
	agent := world.Agent{ID: 0, Width: 1, Height: 1}
	goal := carGoal{x: 10, y: 10, radius: 1.5}
	pl := newPlanner(agent, goal, vehicle.State{X: 2, Y: 2}, w)

	path, status, err := pl.Plan(neverStop)
	assert.NoError(t, err)
	if status == StatusExact {
		assert.NotNil(t, path)
		assert.Greater(t, path.Len(), 1)
	} else {
		assert.Equal(t, StatusApproximate, status)
	}
}

func TestResetClearsArena(t *testing.T) {
	w := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20})
	agent := world.Agent{ID: 0, Width: 1, Height: 1}
	goal := carGoal{x: 10, y: 10, radius: 1.5}
	pl := newPlanner(agent, goal, vehicle.State{X: 2, Y: 2}, w)

	pl.Plan(neverStop)
	pl.Reset()
	assert.Equal(t, 0, len(pl.arena.nodes))
}
