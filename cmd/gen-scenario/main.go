// gen-scenario procedurally builds a scenario YAML file — N agents spaced
// around a ring, each headed to the opposite side, plus one rectangular
// obstacle at the center — and a PNG preview of the resulting workspace.
// Adapted from the teacher's cmd/gen-track, which painted an oval track
// PNG the same pixel-by-pixel way this tool paints obstacle and agent
// markers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"kdcbs/internal/genscenario"
)

func main() {
	numAgents := flag.Int("agents", 4, "number of agents to place around the ring")
	extent := flag.Float64("extent", 20, "half-width of the square workspace")
	outYAML := flag.String("out", "scenario.yaml", "output scenario YAML path")
	outPNG := flag.String("preview", "scenario.png", "output PNG preview path")
	seed := flag.Uint64("seed", 1, "deterministic planner seed recorded in the scenario")
	flag.Parse()

	s := genscenario.BuildRing(*numAgents, *extent, *seed)

	data, err := yaml.Marshal(s)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*outYAML, data, 0o644); err != nil {
		log.Fatal(err)
	}

	if err := genscenario.WritePreview(s, *outPNG); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("wrote %s and %s (%d agents)\n", *outYAML, *outPNG, *numAgents)
}
