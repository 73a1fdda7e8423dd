// Package genscenario procedurally builds ring-formation scenarios — N
// agents spaced evenly around a circle, each headed to the diametrically
// opposite point, with one square obstacle at the workspace center — and
// renders a PNG preview of the result. Shared by cmd/gen-scenario (a
// standalone generator, in the shape of the teacher's cmd/gen-track) and
// the kdcbs CLI's own gen-scenario subcommand.
package genscenario

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"kdcbs/internal/scenario"
)

// BuildRing places numAgents evenly around a circle of radius 0.8*extent
// centred in a square workspace of half-width extent, with one central
// square obstacle.
func BuildRing(numAgents int, extent float64, seed uint64) *scenario.Scenario {
	center := extent
	radius := extent * 0.8

	s := &scenario.Scenario{
		Seed:   seed,
		Bounds: scenario.BoundsSpec{MinX: 0, MinY: 0, MaxX: 2 * extent, MaxY: 2 * extent},
		Obstacles: []scenario.ObstacleSpec{
			{Vertices: [][2]float64{
				{center - extent*0.1, center - extent*0.1},
				{center + extent*0.1, center - extent*0.1},
				{center + extent*0.1, center + extent*0.1},
				{center - extent*0.1, center + extent*0.1},
			}},
		},
	}

	for i := 0; i < numAgents; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numAgents)
		startX := center + radius*math.Cos(angle)
		startY := center + radius*math.Sin(angle)
		goalAngle := angle + math.Pi
		goalX := center + radius*math.Cos(goalAngle)
		goalY := center + radius*math.Sin(goalAngle)

		s.Agents = append(s.Agents, scenario.AgentSpec{
			Name:       fmt.Sprintf("agent-%d", i),
			Width:      1.0,
			Height:     2.0,
			StartX:     startX,
			StartY:     startY,
			StartTheta: goalAngle,
			GoalX:      goalX,
			GoalY:      goalY,
			GoalRadius: 1.5,
		})
	}
	return s
}

// WritePreview renders a rasterized top-down view of a scenario: gray
// obstacles, red start markers, green goal markers.
func WritePreview(s *scenario.Scenario, path string) error {
	const scale = 10
	width := int(s.Bounds.MaxX-s.Bounds.MinX) * scale
	height := int(s.Bounds.MaxY-s.Bounds.MinY) * scale
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, white)
		}
	}

	gray := color.RGBA{100, 100, 100, 255}
	for _, obstacle := range s.Obstacles {
		fillPolygon(img, obstacle.Vertices, scale, gray)
	}

	for _, agent := range s.Agents {
		drawMarker(img, agent.StartX, agent.StartY, scale, color.RGBA{255, 0, 0, 255})
		drawMarker(img, agent.GoalX, agent.GoalY, scale, color.RGBA{0, 150, 0, 255})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func fillPolygon(img *image.RGBA, vertices [][2]float64, scale int, col color.RGBA) {
	minX, minY, maxX, maxY := vertices[0][0], vertices[0][1], vertices[0][0], vertices[0][1]
	for _, v := range vertices {
		minX = math.Min(minX, v[0])
		minY = math.Min(minY, v[1])
		maxX = math.Max(maxX, v[0])
		maxY = math.Max(maxY, v[1])
	}
	for y := int(minY) * scale; y < int(maxY)*scale; y++ {
		for x := int(minX) * scale; x < int(maxX)*scale; x++ {
			img.Set(x, y, col)
		}
	}
}

func drawMarker(img *image.RGBA, x, y float64, scale int, col color.RGBA) {
	cx, cy := int(x)*scale, int(y)*scale
	radius := scale / 2
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}
