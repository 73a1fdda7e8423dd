// Package trajectory holds the motion-tree-to-continuous-path boundary:
// PathControl accumulates the (control, state, duration) triples of one
// accepted RRT edge after another, and Interpolate resamples the
// resulting path onto a fixed time-delta grid the way KD_CBS.cpp's
// interpolate() resamples an OMPL PathControl before conflict checking.
package trajectory

import "errors"

// ErrNonPositiveDuration is returned by Append when a segment's duration
// is not strictly positive; a zero or negative duration edge cannot be
// placed on a time grid.
var ErrNonPositiveDuration = errors.New("trajectory: segment duration must be positive")

// PoseExtractor reads the planar pose (x, y, theta) out of an opaque
// dynamics-specific state, the same abstraction boundary
// internal/problem.AgentPlanningProblem states live behind.
type PoseExtractor func(state interface{}) (x, y, theta float64)

// PathControl is the exact control-level path the low-level planner
// returns: the start state followed by one (control, resulting state,
// duration) triple per accepted tree edge, plus the sub-stepped
// intermediate states the propagator visited along that edge (Interpolate
// samples them; a segment recorded without any samples as its ending
// state).
type PathControl struct {
	States        []interface{}
	Controls      []interface{}
	Durations     []float64
	Intermediates [][]interface{}
}

// NewPathControl starts a PathControl at the given start state.
func NewPathControl(start interface{}) *PathControl {
	return &PathControl{States: []interface{}{start}}
}

// Append records one accepted edge: the control applied, the state it
// produced, the duration it was held for, and the intermediate states the
// propagator visited while producing it. duration must be strictly
// positive, or Append returns an error instead of corrupting the path;
// intermediates are stored as given and may be empty.
func (p *PathControl) Append(control, state interface{}, duration float64, intermediates []interface{}) error {
	if duration <= 0 {
		return ErrNonPositiveDuration
	}
	p.Controls = append(p.Controls, control)
	p.Durations = append(p.Durations, duration)
	p.States = append(p.States, state)
	p.Intermediates = append(p.Intermediates, intermediates)
	return nil
}

// TotalDuration returns the sum of every segment's duration.
func (p *PathControl) TotalDuration() float64 {
	total := 0.0
	for _, d := range p.Durations {
		total += d
	}
	return total
}

// Len returns the number of states on the path (segments + 1).
func (p *PathControl) Len() int {
	return len(p.States)
}

// Sample is one grid point of an interpolated trajectory.
type Sample struct {
	Time        float64
	X, Y, Theta float64
}

// Interpolate resamples a PathControl onto a uniform grid of step dt,
// including t=0 and the path's final time, following spec.md §4.5: each
// edge was already subdivided into substeps during propagation (the
// vehicle propagator uses ceil(duration/Δt) of them), so resampling looks up the substep state covering each grid
// time rather than synthesizing new geometry between the edge's two
// endpoints. This keeps the grid on the vehicle's true swept path instead
// of the straight chord between where an edge started and ended.
func Interpolate(p *PathControl, extract PoseExtractor, dt float64) []Sample {
	if p.Len() == 0 || dt <= 0 {
		return nil
	}
	if p.Len() == 1 {
		x, y, theta := extract(p.States[0])
		return []Sample{{Time: 0, X: x, Y: y, Theta: theta}}
	}

	boundaries := make([]float64, p.Len())
	for i, d := range p.Durations {
		boundaries[i+1] = boundaries[i] + d
	}
	total := boundaries[len(boundaries)-1]

	var samples []Sample
	seg := 0
	for t := 0.0; t <= total; t += dt {
		for seg < len(p.Durations)-1 && t > boundaries[seg+1] {
			seg++
		}
		samples = append(samples, sampleAt(p, extract, boundaries, seg, t))
	}
	if samples[len(samples)-1].Time < total {
		samples = append(samples, sampleAt(p, extract, boundaries, len(p.Durations)-1, total))
	}
	return samples
}

// sampleAt picks the propagated substep covering time t within segment seg:
// the latest substep reached at or before t, so the sample never overshoots
// onto a state the vehicle hadn't reached yet. A segment recorded with no
// substeps falls back to its ending state at every grid time it covers.
func sampleAt(p *PathControl, extract PoseExtractor, boundaries []float64, seg int, t float64) Sample {
	segStart, segEnd := boundaries[seg], boundaries[seg+1]
	subs := p.Intermediates[seg]

	var state interface{}
	switch {
	case len(subs) == 0:
		state = p.States[seg+1]
	default:
		substepDt := (segEnd - segStart) / float64(len(subs))
		k := len(subs)
		if substepDt > 0 {
			k = int((t - segStart) / substepDt)
		}
		switch {
		case k <= 0:
			state = p.States[seg]
		case k > len(subs):
			state = subs[len(subs)-1]
		default:
			state = subs[k-1]
		}
	}

	x, y, theta := extract(state)
	return Sample{Time: t, X: x, Y: y, Theta: theta}
}
