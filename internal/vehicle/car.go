// Package vehicle provides a concrete second-order car dynamics model
// implementing internal/problem.AgentPlanningProblem, adapted from the
// teacher's internal/physics.Car.Update arcade dynamics and from the
// corner-rotation collision geometry shared between car.go and
// cmd/app/main.go. Steering-control framing follows the dubins heading
// adjustment in afb2001-CCOM_planner's dubins.go; state discretization for
// nearest-neighbour distance follows qlearning.go's DiscretizeState
// bucketing idea, generalized from a Q-table index to a continuous metric.
package vehicle

import (
	"math"

	"kdcbs/internal/common"
	"kdcbs/internal/problem"
	"kdcbs/internal/randengine"
	"kdcbs/internal/svc"
	"kdcbs/internal/world"
)

var _ problem.AgentPlanningProblem = (*CarProblem)(nil)

// Params holds the tunable constants of the car model, mirroring the
// teacher's package-level physics constants but scoped per-problem instead
// of global.
type Params struct {
	MaxSpeed     float64
	Acceleration float64
	Braking      float64
	Friction     float64
	TurnSpeed    float64
	Grip         float64
	SubstepDt    float64
	MinDuration  float64
	MaxDuration  float64
}

// DefaultParams mirrors the teacher's car.go constants.
func DefaultParams() Params {
	return Params{
		MaxSpeed:     10.0,
		Acceleration: 0.2,
		Braking:      0.4,
		Friction:     0.05,
		TurnSpeed:    0.05,
		Grip:         0.9,
		SubstepDt:    0.1,
		MinDuration:  0.2,
		MaxDuration:  1.0,
	}
}

// State is the car's configuration: pose plus scalar forward speed.
type State struct {
	X, Y, Theta float64
	Speed       float64
}

// Control is a constant throttle/brake/steering command held for Duration.
type Control struct {
	Throttle, Brake, Steering float64
	Duration                  float64
}

// CarProblem implements problem.AgentPlanningProblem for one agent's car
// dynamics, sampling bounds, and goal region.
type CarProblem struct {
	params Params
	bounds world.Bounds
	goal   world.GoalRegion
	start  State
	checker *svc.StaticValidityChecker
	width, height float64
	rng *randengine.Engine
}

// NewCarProblem builds a CarProblem for one agent.
func NewCarProblem(params Params, bounds world.Bounds, goal world.GoalRegion, start State, checker *svc.StaticValidityChecker, width, height float64, rng *randengine.Engine) *CarProblem {
	return &CarProblem{
		params:  params,
		bounds:  bounds,
		goal:    goal,
		start:   start,
		checker: checker,
		width:   width,
		height:  height,
		rng:     rng,
	}
}

// Start returns the car's initial state.
func (p *CarProblem) Start() interface{} {
	return p.start
}

// Dt returns the fixed substep size the propagator integrates dynamics at.
func (p *CarProblem) Dt() float64 {
	return p.params.SubstepDt
}

// Goal returns the agent's goal region.
func (p *CarProblem) Goal() world.GoalRegion {
	return p.goal
}

// Distance returns a weighted Euclidean-plus-heading metric between two
// car states, used by the low-level planner to pick a tree's nearest node
// to a random sample.
func (p *CarProblem) Distance(a, b interface{}) float64 {
	sa, sb := a.(State), b.(State)
	dx, dy := sa.X-sb.X, sa.Y-sb.Y
	dTheta := headingDelta(sa.Theta, sb.Theta)
	return math.Sqrt(dx*dx+dy*dy) + 0.5*math.Abs(dTheta)
}

func headingDelta(a, b float64) float64 {
	d := common.WrapHeading(a - b)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// Sampler returns a state sampler drawing uniformly over the workspace
// bounds, full heading range, and speed range.
func (p *CarProblem) Sampler() problem.StateSampler {
	return carSampler{p}
}

type carSampler struct{ p *CarProblem }

func (s carSampler) Sample() interface{} {
	p := s.p
	return State{
		X:     p.rng.UniformRange(p.bounds.MinX, p.bounds.MaxX),
		Y:     p.rng.UniformRange(p.bounds.MinY, p.bounds.MaxY),
		Theta: p.rng.UniformRange(0, 2*math.Pi),
		Speed: p.rng.UniformRange(-p.params.MaxSpeed, p.params.MaxSpeed),
	}
}

// ControlSampler returns a directed control sampler that steers toward the
// target heading with randomized throttle/brake and duration, following
// the dubins idea of resolving a desired heading delta into a steering
// command rather than sampling steering blind.
func (p *CarProblem) ControlSampler() problem.DirectedControlSampler {
	return carControlSampler{p}
}

type carControlSampler struct{ p *CarProblem }

func (s carControlSampler) SampleTowards(nearest, target interface{}) (interface{}, float64) {
	p := s.p
	from := nearest.(State)
	to := target.(State)

	desiredHeading := math.Atan2(to.Y-from.Y, to.X-from.X)
	delta := headingDelta(desiredHeading, from.Theta)
	steering := clamp(delta/p.params.TurnSpeed, -1, 1)

	throttle, brake := 0.0, 0.0
	if p.rng.PTrue(0.7) {
		throttle = p.rng.UniformRange(0, 1)
	} else {
		brake = p.rng.UniformRange(0, 1)
	}

	duration := p.rng.UniformRange(p.params.MinDuration, p.params.MaxDuration)
	return Control{Throttle: throttle, Brake: brake, Steering: steering, Duration: duration}, duration
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Propagator returns the dynamics propagator for this problem.
func (p *CarProblem) Propagator() problem.Propagator {
	return carPropagator{p}
}

type carPropagator struct{ p *CarProblem }

// Propagate integrates the car's arcade dynamics (teacher's car.go Update,
// generalized from a per-tick grid lookup to a per-substep static validity
// check) in fixed substeps of params.SubstepDt up to duration, stopping
// early and reporting invalid as soon as a substep fails the static
// validity checker.
func (c carPropagator) Propagate(state, control interface{}, duration float64) (interface{}, []interface{}, bool) {
	p := c.p
	s := state.(State)
	ctl := control.(Control)

	steps := int(math.Ceil(duration / p.params.SubstepDt))
	if steps < 1 {
		steps = 1
	}
	dt := duration / float64(steps)

	intermediates := make([]interface{}, 0, steps)
	for i := 0; i < steps; i++ {
		s = stepCar(s, ctl, dt, p.params)
		intermediates = append(intermediates, s)
		if !p.checker.IsValid(s.X, s.Y, s.Theta, p.width, p.height) {
			return s, intermediates, false
		}
	}
	return s, intermediates, true
}

// stepCar advances one fixed-dt substep of the car's arcade dynamics.
func stepCar(s State, ctl Control, dt float64, params Params) State {
	speed := s.Speed
	if ctl.Throttle > 0 {
		speed += ctl.Throttle * params.Acceleration
	}
	if ctl.Brake > 0 {
		speed -= ctl.Brake * params.Braking
	}

	if speed > 0 {
		speed -= params.Friction
		if speed < 0 {
			speed = 0
		}
	} else if speed < 0 {
		speed += params.Friction
		if speed > 0 {
			speed = 0
		}
	}
	if speed > params.MaxSpeed {
		speed = params.MaxSpeed
	}
	if speed < -params.MaxSpeed {
		speed = -params.MaxSpeed
	}

	theta := s.Theta
	if math.Abs(speed) > 0.1 {
		theta += ctl.Steering * params.TurnSpeed
	}
	theta = common.WrapHeading(theta)

	x := s.X + math.Cos(theta)*speed*dt
	y := s.Y + math.Sin(theta)*speed*dt

	return State{X: x, Y: y, Theta: theta, Speed: speed}
}
