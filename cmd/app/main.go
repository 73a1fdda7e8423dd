package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"kdcbs/internal/highlevel"
	"kdcbs/internal/scenario"
	"kdcbs/internal/svc"
	"kdcbs/internal/trajectory"
	"kdcbs/internal/vehicle"
	"kdcbs/internal/world"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

const (
	WindowWidth  = 1000
	WindowHeight = 800
	ViewScaleMargin = 0.9
	PlaybackDt      = 0.05 // Seconds advanced per tick at 1x speed.
)

var agentPalette = []color.RGBA{
	{255, 64, 64, 255},
	{64, 160, 255, 255},
	{64, 220, 120, 255},
	{255, 200, 64, 255},
	{200, 100, 255, 255},
	{64, 220, 220, 255},
}

var (
	ColorObstacle = color.RGBA{60, 60, 60, 255}
	ColorBounds   = color.RGBA{20, 20, 20, 255}
	ColorTrail    = color.RGBA{255, 255, 255, 60}
)

// Game replays a solved KD-CBS plan: every agent's interpolated trajectory
// sample is advanced one playback tick at a time.
type Game struct {
	agents  []world.Agent
	samples map[world.AgentID][]trajectory.Sample

	obstaclesPath vector.Path
	bounds        world.Bounds

	tickIndex float64
	playing   bool
	speed     float64

	viewScale             float32
	viewOffsetX, viewOffsetY float32
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.playing = !g.playing
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.speed *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.speed /= 2
	}
	if g.playing {
		g.tickIndex += g.speed
	}
	return nil
}

func (g *Game) toScreen(x, y float64) (float32, float32) {
	sx := float32(x)*g.viewScale + g.viewOffsetX
	sy := float32(y)*g.viewScale + g.viewOffsetY
	return sx, sy
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{245, 245, 245, 255})

	var cs ebiten.ColorScale
	cs.ScaleWithColor(ColorObstacle)
	vector.FillPath(screen, &g.obstaclesPath, nil, &vector.DrawPathOptions{AntiAlias: true, ColorScale: cs})

	maxLen := 0
	for _, a := range g.agents {
		if n := len(g.samples[a.ID]); n > maxLen {
			maxLen = n
		}
	}
	if maxLen == 0 {
		return
	}
	idx := int(g.tickIndex) % maxLen
	if idx < 0 {
		idx = 0
	}

	for i, agent := range g.agents {
		samples := g.samples[agent.ID]
		if len(samples) == 0 {
			continue
		}
		k := idx
		if k >= len(samples) {
			k = len(samples) - 1
		}
		s := samples[k]
		g.drawFootprint(screen, agent, s, agentPalette[i%len(agentPalette)])
		g.drawTrail(screen, samples[:k+1])
	}

	g.drawHUD(screen, idx, maxLen)
}

// drawFootprint renders one agent's oriented rectangle footprint and a
// heading tick, the same corner-rotate-then-screen-transform shape the
// teacher's car renderer used for a single vehicle.
func (g *Game) drawFootprint(screen *ebiten.Image, agent world.Agent, s trajectory.Sample, col color.RGBA) {
	halfW, halfH := agent.Width/2, agent.Height/2
	cosT, sinT := math.Cos(s.Theta), math.Sin(s.Theta)

	corners := [4][2]float64{
		{-halfW, -halfH},
		{halfW, -halfH},
		{halfW, halfH},
		{-halfW, halfH},
	}

	var path vector.Path
	for i, c := range corners {
		wx := s.X + c[0]*cosT - c[1]*sinT
		wy := s.Y + c[0]*sinT + c[1]*cosT
		sx, sy := g.toScreen(wx, wy)
		if i == 0 {
			path.MoveTo(sx, sy)
		} else {
			path.LineTo(sx, sy)
		}
	}
	path.Close()

	var cs ebiten.ColorScale
	cs.ScaleWithColor(col)
	vector.FillPath(screen, &path, nil, &vector.DrawPathOptions{AntiAlias: true, ColorScale: cs})

	headX, headY := g.toScreen(s.X, s.Y)
	tipX, tipY := g.toScreen(s.X+math.Cos(s.Theta)*(halfH+3), s.Y+math.Sin(s.Theta)*(halfH+3))
	vector.StrokeLine(screen, headX, headY, tipX, tipY, 2, color.RGBA{0, 0, 0, 255}, true)
}

func (g *Game) drawTrail(screen *ebiten.Image, samples []trajectory.Sample) {
	for i := 1; i < len(samples); i++ {
		x1, y1 := g.toScreen(samples[i-1].X, samples[i-1].Y)
		x2, y2 := g.toScreen(samples[i].X, samples[i].Y)
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, ColorTrail, true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, idx, maxLen int) {
	vector.FillRect(screen, 0, 0, 170, float32(24+16*len(g.agents)), color.RGBA{0, 0, 0, 180}, true)
	msg := fmt.Sprintf("tick %d / %d  speed %.1fx\n", idx, maxLen, g.speed)
	for i, a := range g.agents {
		msg += fmt.Sprintf("agent %d: %s\n", i, a.Name)
	}
	msg += "[space] play/pause  [up/down] speed"
	ebitenutil.DebugPrint(screen, msg)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

func main() {
	scenarioPath := flag.String("scenario", "scenario.yaml", "path to a scenario YAML file")
	timeout := flag.Duration("timeout", 10*time.Second, "wall-clock budget for KD-CBS before returning its best plan")
	strictUnion := flag.Bool("strict-union-constraints", false, "use the swept-footprint-union constraint policy instead of the single-footprint policy")
	flag.Parse()

	s, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatal(err)
	}
	w, problems, rng := s.Build()

	options := highlevel.DefaultOptions()
	options.StrictUnionConstraints = *strictUnion

	planner := &highlevel.Planner{
		Input:   highlevel.Input{World: w, Problems: problems, Extract: vehicleExtract},
		Checker: svc.New(w),
		RNG:     rng,
		Options: options,
	}

	deadline := time.Now().Add(*timeout)
	result, err := planner.Solve(func() bool { return time.Now().After(deadline) })
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("kd-cbs finished: status=%v cost=%.2f expansions=%d", result.Status, result.Cost, result.Expansions)
	if result.Plan == nil {
		log.Fatal("no plan to play back")
	}

	samples := make(map[world.AgentID][]trajectory.Sample, len(result.Plan))
	for id, path := range result.Plan {
		samples[id] = trajectory.Interpolate(path, vehicleExtract, PlaybackDt)
	}

	bounds := w.Bounds()
	viewScale, offsetX, offsetY := fitView(bounds, WindowWidth, WindowHeight)

	game := &Game{
		agents:      w.Agents(),
		samples:     samples,
		obstaclesPath: obstaclePath(w, viewScale, offsetX, offsetY),
		bounds:      bounds,
		playing:     true,
		speed:       1,
		viewScale:   viewScale,
		viewOffsetX: offsetX,
		viewOffsetY: offsetY,
	}

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("KD-CBS Playback")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func vehicleExtract(state interface{}) (float64, float64, float64) {
	s := state.(vehicle.State)
	return s.X, s.Y, s.Theta
}

func fitView(bounds world.Bounds, winW, winH int) (scale, offsetX, offsetY float32) {
	width := bounds.MaxX - bounds.MinX
	height := bounds.MaxY - bounds.MinY
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	scaleW := float32(winW) / float32(width)
	scaleH := float32(winH) / float32(height)
	scale = scaleW
	if scaleH < scale {
		scale = scaleH
	}
	scale *= ViewScaleMargin
	offsetX = (float32(winW) - float32(width)*scale) / 2 - float32(bounds.MinX)*scale
	offsetY = (float32(winH) - float32(height)*scale) / 2 - float32(bounds.MinY)*scale
	return scale, offsetX, offsetY
}

func obstaclePath(w *world.World, scale, offsetX, offsetY float32) vector.Path {
	var path vector.Path
	for _, obstacle := range w.StaticObstacles() {
		for i, v := range obstacle.Vertices {
			sx := float32(v.X)*scale + offsetX
			sy := float32(v.Y)*scale + offsetY
			if i == 0 {
				path.MoveTo(sx, sy)
			} else {
				path.LineTo(sx, sy)
			}
		}
		path.Close()
	}
	return path
}
