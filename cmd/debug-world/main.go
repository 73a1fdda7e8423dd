// debug-world loads a scenario file and reports whether every agent's
// start state is statically valid, without running any search. It
// replaces the teacher's cmd/debug-mesh, whose only body was a commented-
// out raster mesh dump with no compiling entry point — this is a real
// diagnostic over the workspace the kdcbs tools now operate on.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"kdcbs/internal/scenario"
	"kdcbs/internal/svc"
	"kdcbs/internal/vehicle"
)

func main() {
	scenarioPath := flag.String("scenario", "scenario.yaml", "path to a scenario YAML file")
	flag.Parse()

	s, err := scenario.Load(*scenarioPath)
	if err != nil {
		log.Fatal(err)
	}
	w, _, _ := s.Build()
	checker := svc.New(w)

	fmt.Printf("bounds: [%.1f, %.1f] x [%.1f, %.1f]\n", w.Bounds().MinX, w.Bounds().MinY, w.Bounds().MaxX, w.Bounds().MaxY)
	fmt.Printf("obstacles: %d\n", len(w.StaticObstacles()))
	fmt.Printf("agents: %d\n\n", len(w.Agents()))

	failures := 0
	for _, agent := range w.Agents() {
		start := agent.Start.(vehicle.State)
		ok := checker.IsValid(start.X, start.Y, start.Theta, agent.Width, agent.Height)
		status := "OK"
		if !ok {
			status = "INVALID"
			failures++
		}
		fmt.Printf("agent %-12s start=(%.2f, %.2f, %.2f) %s\n", agent.Name, start.X, start.Y, start.Theta, status)

		if goalState, ok := agent.Goal.Sample(); ok {
			gs := goalState.(vehicle.State)
			goalValid := checker.IsValid(gs.X, gs.Y, gs.Theta, agent.Width, agent.Height)
			goalStatus := "OK"
			if !goalValid {
				goalStatus = "INVALID"
				failures++
			}
			fmt.Printf("  goal sample=(%.2f, %.2f) %s\n", gs.X, gs.Y, goalStatus)
		}
	}

	if failures > 0 {
		fmt.Printf("\n%d problem(s) found\n", failures)
		os.Exit(1)
	}
	fmt.Println("\nworld is consistent")
}
