package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kdcbs/internal/geometry"
)

type fixedGoal struct {
	at interface{}
}

func (g fixedGoal) IsSatisfied(state interface{}) (bool, float64) {
	return state == g.at, 0
}

func (g fixedGoal) Sample() (interface{}, bool) {
	return g.at, true
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	assert.True(t, b.Contains(0, 0))
	assert.True(t, b.Contains(1, 1))
	assert.False(t, b.Contains(1.1, 0))
}

func TestWorldAgentLookup(t *testing.T) {
	agents := []Agent{
		{ID: 0, Name: "a0", Width: 1, Height: 2, Goal: fixedGoal{at: "g0"}},
		{ID: 1, Name: "a1", Width: 1, Height: 2, Goal: fixedGoal{at: "g1"}},
	}
	w := NewWorld(agents, nil, Bounds{MaxX: 10, MaxY: 10})

	got, ok := w.Agent(1)
	assert.True(t, ok)
	assert.Equal(t, "a1", got.Name)

	_, ok = w.Agent(5)
	assert.False(t, ok)

	assert.Len(t, w.Agents(), 2)
}

func TestWorldStaticObstacles(t *testing.T) {
	obstacle := geometry.Footprint(5, 5, 0, 2, 2)
	w := NewWorld(nil, []geometry.Polygon{obstacle}, Bounds{MaxX: 10, MaxY: 10})
	assert.Len(t, w.StaticObstacles(), 1)
}

func TestAgentShape(t *testing.T) {
	a := Agent{Width: 3, Height: 4}
	w, h := a.Shape()
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 4.0, h)
}
