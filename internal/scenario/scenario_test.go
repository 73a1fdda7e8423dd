package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
seed: 7
bounds:
  min_x: 0
  min_y: 0
  max_x: 20
  max_y: 20
obstacles:
  - vertices:
      - [5, 5]
      - [7, 5]
      - [7, 7]
      - [5, 7]
agents:
  - name: a0
    width: 1
    height: 1
    start_x: 1
    start_y: 1
    goal_x: 15
    goal_y: 15
    goal_radius: 1.5
  - name: a1
    width: 1
    height: 1
    start_x: 15
    start_y: 1
    goal_x: 1
    goal_y: 15
    goal_radius: 1.5
`

func writeSample(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLoadParsesScenario(t *testing.T) {
	path := writeSample(t)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), s.Seed)
	assert.Len(t, s.Agents, 2)
	assert.Len(t, s.Obstacles, 1)
	assert.Equal(t, "a0", s.Agents[0].Name)
}

func TestLoadProjectFindsScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(sampleYAML), 0o644))

	s, err := LoadProject(dir)
	require.NoError(t, err)
	assert.Len(t, s.Agents, 2)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/scenario.yaml")
	assert.Error(t, err)
}

func TestBuildProducesWorldAndProblems(t *testing.T) {
	path := writeSample(t)
	s, err := Load(path)
	require.NoError(t, err)

	w, problems, rng := s.Build()
	assert.NotNil(t, rng)
	assert.Len(t, w.Agents(), 2)
	assert.Len(t, w.StaticObstacles(), 1)
	assert.Len(t, problems, 2)
}
