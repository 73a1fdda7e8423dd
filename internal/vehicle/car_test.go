package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/world"
)

type goalAt struct{ x, y float64 }

func (g goalAt) IsSatisfied(state interface{}) (bool, float64) {
	s := state.(State)
	dx, dy := s.X-g.x, s.Y-g.y
	return dx*dx+dy*dy < 0.01, dx*dx + dy*dy
}

func (g goalAt) Sample() (interface{}, bool) {
	return State{X: g.x, Y: g.y}, true
}

func newTestProblem() *CarProblem {
	w := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})
	checker := svc.New(w)
	return NewCarProblem(DefaultParams(), w.Bounds(), goalAt{50, 50}, State{X: 10, Y: 10}, checker, 2, 1, randengine.New(1))
}

func TestDistanceZeroForSameState(t *testing.T) {
	p := newTestProblem()
	s := State{X: 1, Y: 2, Theta: 0.5}
	assert.Equal(t, 0.0, p.Distance(s, s))
}

func TestSamplerStaysInBounds(t *testing.T) {
	p := newTestProblem()
	sampler := p.Sampler()
	for i := 0; i < 50; i++ {
		s := sampler.Sample().(State)
		assert.True(t, p.bounds.Contains(s.X, s.Y))
	}
}

func TestPropagateStopsAtWall(t *testing.T) {
	obstacleWorld := world.NewWorld(nil, nil, world.Bounds{MinX: 0, MinY: 0, MaxX: 5, MaxY: 100})
	checker := svc.New(obstacleWorld)
	p := NewCarProblem(DefaultParams(), obstacleWorld.Bounds(), goalAt{50, 50}, State{X: 1, Y: 1}, checker, 1, 1, randengine.New(1))

	start := State{X: 4, Y: 50, Theta: 0, Speed: 5}
	ctl := Control{Throttle: 1, Duration: 1}
	result, intermediates, valid := p.Propagator().Propagate(start, ctl, 1)

	assert.False(t, valid)
	assert.NotEmpty(t, intermediates)
	finalState := result.(State)
	assert.Greater(t, finalState.X, start.X)
}

func TestPropagateValidWithinBounds(t *testing.T) {
	p := newTestProblem()
	start := State{X: 10, Y: 10, Theta: 0, Speed: 0}
	ctl := Control{Throttle: 0.5, Duration: 0.5}
	_, intermediates, valid := p.Propagator().Propagate(start, ctl, 0.5)

	assert.True(t, valid)
	assert.NotEmpty(t, intermediates)
}
