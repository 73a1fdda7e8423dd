// Package conflict implements the multi-agent trajectory validator:
// interpolate every agent's PathControl onto one shared time-delta grid,
// then scan for the earliest episode where two agents' footprints stop
// being disjoint, extending the episode forward while the overlap
// persists so a single conflict covers its whole contiguous span instead
// of just its first grid tick. Grounded directly on KD_CBS.cpp's
// validatePlan, including its extension rule.
package conflict

import (
	"kdcbs/internal/geometry"
	"kdcbs/internal/trajectory"
	"kdcbs/internal/world"
)

// Conflict names the two agents whose footprints overlap, and the time
// span of that overlap episode.
type Conflict struct {
	AgentA, AgentB       world.AgentID
	TimeStart, TimeEnd   float64
}

// shapes looks up footprint dimensions per agent for the scan.
type shapes map[world.AgentID][2]float64

func shapesOf(agents []world.Agent) shapes {
	s := make(shapes, len(agents))
	for _, a := range agents {
		w, h := a.Shape()
		s[a.ID] = [2]float64{w, h}
	}
	return s
}

// Detect interpolates every agent's plan onto a shared dt grid and returns
// the earliest footprint-overlap episode found, if any (spec.md §4.6).
// plan maps each agent to its PathControl; agents supplies footprint
// dimensions and must cover every key of plan. Pairs are scanned in the
// order of agents, so AgentA comes before AgentB in that order.
func Detect(plan map[world.AgentID]*trajectory.PathControl, agents []world.Agent, extract trajectory.PoseExtractor, dt float64) (*Conflict, bool) {
	ids := make([]world.AgentID, 0, len(plan))
	samples := make(map[world.AgentID][]trajectory.Sample, len(plan))
	maxLen := 0
	for _, agent := range agents {
		id := agent.ID
		path, ok := plan[id]
		if !ok {
			continue
		}
		ids = append(ids, id)
		s := trajectory.Interpolate(path, extract, dt)
		samples[id] = s
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	dims := shapesOf(agents)

	for t := 0; t < maxLen; t++ {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				sa, sb := samples[a], samples[b]
				if t >= len(sa) || t >= len(sb) {
					continue
				}
				if footprintsDisjoint(sa[t], dims[a], sb[t], dims[b]) {
					continue
				}
				return extendEpisode(a, b, sa, sb, dims[a], dims[b], t), true
			}
		}
	}
	return nil, false
}

func footprintsDisjoint(sa trajectory.Sample, dimsA [2]float64, sb trajectory.Sample, dimsB [2]float64) bool {
	fa := geometry.Footprint(sa.X, sa.Y, sa.Theta, dimsA[0], dimsA[1])
	fb := geometry.Footprint(sb.X, sb.Y, sb.Theta, dimsB[0], dimsB[1])
	return geometry.Disjoint(fa, fb)
}

// extendEpisode grows the overlap episode found at grid index start
// forward while the two agents' footprints keep overlapping, one grid
// tick at a time, so the reported conflict spans its whole contiguous
// duration rather than a single instant.
func extendEpisode(a, b world.AgentID, sa, sb []trajectory.Sample, dimsA, dimsB [2]float64, start int) *Conflict {
	end := start
	for end+1 < len(sa) && end+1 < len(sb) && !footprintsDisjoint(sa[end+1], dimsA, sb[end+1], dimsB) {
		end++
	}
	return &Conflict{
		AgentA:    a,
		AgentB:    b,
		TimeStart: sa[start].Time,
		TimeEnd:   sa[end].Time,
	}
}
