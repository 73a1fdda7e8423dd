package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kdcbs/internal/geometry"
	"kdcbs/internal/world"
)

func TestEmptySetHasNoConstraints(t *testing.T) {
	s := Empty()
	assert.Empty(t, s.All())
	assert.Empty(t, s.ForAgent(0))
}

func TestAddDoesNotMutateParent(t *testing.T) {
	root := Empty()
	region := geometry.Footprint(0, 0, 0, 1, 1)
	child := root.Add(Constraint{Agent: 1, Region: region, TimeStart: 0, TimeEnd: 1})

	assert.Empty(t, root.All())
	assert.Len(t, child.All(), 1)
}

func TestAllCollectsAncestorChain(t *testing.T) {
	region := geometry.Footprint(0, 0, 0, 1, 1)
	root := Empty()
	a := root.Add(Constraint{Agent: 0, Region: region, TimeStart: 0, TimeEnd: 1})
	b := a.Add(Constraint{Agent: 1, Region: region, TimeStart: 1, TimeEnd: 2})

	all := b.All()
	assert.Len(t, all, 2)
	assert.Equal(t, world.AgentID(0), all[0].Agent)
	assert.Equal(t, world.AgentID(1), all[1].Agent)
}

func TestForAgentFiltersByAgent(t *testing.T) {
	region := geometry.Footprint(0, 0, 0, 1, 1)
	root := Empty()
	s := root.Add(Constraint{Agent: 0, Region: region}).Add(Constraint{Agent: 1, Region: region})

	assert.Len(t, s.ForAgent(0), 1)
	assert.Len(t, s.ForAgent(1), 1)
	assert.Empty(t, s.ForAgent(2))
}

func TestViolatesChecksTimeAndOverlap(t *testing.T) {
	region := geometry.Footprint(5, 5, 0, 2, 2)
	s := Empty().Add(Constraint{Agent: 0, Region: region, TimeStart: 1, TimeEnd: 2})

	assert.True(t, s.Violates(0, 5, 5, 0, 1, 1, 1.5))
	assert.False(t, s.Violates(0, 5, 5, 0, 1, 1, 3))
	assert.False(t, s.Violates(0, 50, 50, 0, 1, 1, 1.5))
	assert.False(t, s.Violates(1, 5, 5, 0, 1, 1, 1.5))
}
