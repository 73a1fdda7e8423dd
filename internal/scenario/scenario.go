// Package scenario loads YAML scenario files describing a workspace,
// its static obstacles, and one car-dynamics agent per entry, and builds
// the runtime World and AgentPlanningProblem set the planners need.
// Grounded on cityplanner's pkg/spec.Load/LoadProject YAML-to-struct
// pattern.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kdcbs/internal/geometry"
	"kdcbs/internal/problem"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/vehicle"
	"kdcbs/internal/world"
)

// BoundsSpec is the YAML shape of a workspace's rectangular extent.
type BoundsSpec struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// ObstacleSpec is one static obstacle's polygon vertices, in order.
type ObstacleSpec struct {
	Vertices [][2]float64 `yaml:"vertices"`
}

// AgentSpec is one agent: its footprint, start pose, and goal.
type AgentSpec struct {
	Name        string  `yaml:"name"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	StartX      float64 `yaml:"start_x"`
	StartY      float64 `yaml:"start_y"`
	StartTheta  float64 `yaml:"start_theta"`
	StartSpeed  float64 `yaml:"start_speed"`
	GoalX       float64 `yaml:"goal_x"`
	GoalY       float64 `yaml:"goal_y"`
	GoalRadius  float64 `yaml:"goal_radius"`
}

// Scenario is the full YAML document: a workspace plus its obstacles and
// agents.
type Scenario struct {
	Seed      uint64         `yaml:"seed"`
	Bounds    BoundsSpec     `yaml:"bounds"`
	Obstacles []ObstacleSpec `yaml:"obstacles"`
	Agents    []AgentSpec    `yaml:"agents"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return &s, nil
}

// LoadProject loads scenario.yaml out of a project directory, mirroring
// cityplanner's LoadProject convention for its own city.yaml.
func LoadProject(projectDir string) (*Scenario, error) {
	return Load(filepath.Join(projectDir, "scenario.yaml"))
}

// goalRegion is the runtime GoalRegion built from an AgentSpec's circular
// goal.
type goalRegion struct {
	x, y, radius float64
}

func (g goalRegion) IsSatisfied(state interface{}) (bool, float64) {
	s := state.(vehicle.State)
	dx, dy := s.X-g.x, s.Y-g.y
	d := dx*dx + dy*dy
	return d <= g.radius*g.radius, d
}

func (g goalRegion) Sample() (interface{}, bool) {
	return vehicle.State{X: g.x, Y: g.y}, true
}

// Build turns a loaded Scenario into a World plus one CarProblem per
// agent, ready to hand to internal/highlevel.Planner.
func (s *Scenario) Build() (*world.World, map[world.AgentID]problem.AgentPlanningProblem, *randengine.Engine) {
	bounds := world.Bounds{MinX: s.Bounds.MinX, MinY: s.Bounds.MinY, MaxX: s.Bounds.MaxX, MaxY: s.Bounds.MaxY}

	obstacles := make([]geometry.Polygon, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		vertices := make([]geometry.Vec2, 0, len(o.Vertices))
		for _, v := range o.Vertices {
			vertices = append(vertices, geometry.Vec2{X: v[0], Y: v[1]})
		}
		obstacles = append(obstacles, geometry.NewPolygon(vertices))
	}

	agents := make([]world.Agent, 0, len(s.Agents))
	for i, a := range s.Agents {
		start := vehicle.State{X: a.StartX, Y: a.StartY, Theta: a.StartTheta, Speed: a.StartSpeed}
		agents = append(agents, world.Agent{
			ID:     world.AgentID(i),
			Name:   a.Name,
			Width:  a.Width,
			Height: a.Height,
			Start:  start,
			Goal:   goalRegion{x: a.GoalX, y: a.GoalY, radius: a.GoalRadius},
		})
	}

	w := world.NewWorld(agents, obstacles, bounds)
	checker := svc.New(w)
	rng := randengine.New(s.Seed)

	problems := make(map[world.AgentID]problem.AgentPlanningProblem, len(agents))
	for _, a := range agents {
		start := a.Start.(vehicle.State)
		problems[a.ID] = vehicle.NewCarProblem(vehicle.DefaultParams(), bounds, a.Goal, start, checker, a.Width, a.Height, rng)
	}

	return w, problems, rng
}
