// kdcbs is the cobra-driven command-line entry point for running KD-CBS
// headlessly: solve a scenario and print its result, or validate a
// scenario's static consistency without searching. Grounded on
// cityplanner's cmd/cityplanner root-command/subcommand split.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kdcbs/internal/genscenario"
	"kdcbs/internal/highlevel"
	"kdcbs/internal/scenario"
	"kdcbs/internal/svc"
	"kdcbs/internal/vehicle"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kdcbs",
		Short: "Multi-agent kinodynamic conflict-based search",
	}

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(genScenarioCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	var timeout time.Duration
	var strictUnion bool
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "solve [scenario.yaml]",
		Short: "Run KD-CBS on a scenario and print the resulting plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSolve(args[0], timeout, strictUnion, maxIterations)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "wall-clock budget before returning the best plan found")
	cmd.Flags().BoolVar(&strictUnion, "strict-union-constraints", false, "use the swept-footprint-union constraint policy")
	cmd.Flags().IntVar(&maxIterations, "low-level-iterations", 5000, "per-replan low-level RRT iteration cap")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario.yaml]",
		Short: "Check a scenario's static consistency without searching",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func genScenarioCmd() *cobra.Command {
	var numAgents int
	var extent float64
	var outYAML, outPNG string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "gen-scenario",
		Short: "Procedurally generate a ring-formation scenario and a PNG preview",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenScenario(numAgents, extent, outYAML, outPNG, seed)
		},
	}

	cmd.Flags().IntVar(&numAgents, "agents", 4, "number of agents to place around the ring")
	cmd.Flags().Float64Var(&extent, "extent", 20, "half-width of the square workspace")
	cmd.Flags().StringVar(&outYAML, "out", "scenario.yaml", "output scenario YAML path")
	cmd.Flags().StringVar(&outPNG, "preview", "scenario.png", "output PNG preview path")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "deterministic planner seed recorded in the scenario")
	return cmd
}

func runGenScenario(numAgents int, extent float64, outYAML, outPNG string, seed uint64) error {
	s := genscenario.BuildRing(numAgents, extent, seed)

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outYAML, data, 0o644); err != nil {
		return err
	}
	if err := genscenario.WritePreview(s, outPNG); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s (%d agents)\n", outYAML, outPNG, numAgents)
	return nil
}

func runSolve(path string, timeout time.Duration, strictUnion bool, maxIterations int) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	w, problems, rng := s.Build()

	options := highlevel.DefaultOptions()
	options.StrictUnionConstraints = strictUnion
	options.LowLevel.MaxIterations = maxIterations

	planner := &highlevel.Planner{
		Input:   highlevel.Input{World: w, Problems: problems, Extract: vehicleExtract},
		Checker: svc.New(w),
		RNG:     rng,
		Options: options,
	}

	deadline := time.Now().Add(timeout)
	result, err := planner.Solve(func() bool { return time.Now().After(deadline) })
	if err != nil {
		return err
	}

	fmt.Printf("status: %s\n", statusName(result.Status))
	fmt.Printf("cost: %.3f\n", result.Cost)
	fmt.Printf("expansions: %d\n", result.Expansions)
	if result.Plan == nil {
		return nil
	}

	report := make(map[string]int, len(result.Plan))
	for id, agentPath := range result.Plan {
		agent, _ := w.Agent(id)
		report[agent.Name] = agentPath.Len()
	}
	encoded, _ := json.MarshalIndent(report, "", "  ")
	fmt.Printf("states per agent:\n%s\n", encoded)
	return nil
}

func runValidate(path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	w, _, _ := s.Build()
	checker := svc.New(w)

	invalid := 0
	for _, agent := range w.Agents() {
		start := agent.Start.(vehicle.State)
		if !checker.IsValid(start.X, start.Y, start.Theta, agent.Width, agent.Height) {
			fmt.Printf("agent %s: start state is statically invalid\n", agent.Name)
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d agent(s) have an invalid start state", invalid)
	}
	fmt.Println("scenario is statically valid")
	return nil
}

func vehicleExtract(state interface{}) (float64, float64, float64) {
	s := state.(vehicle.State)
	return s.X, s.Y, s.Theta
}

func statusName(s highlevel.Status) string {
	switch s {
	case highlevel.StatusSolved:
		return "solved"
	case highlevel.StatusInfeasible:
		return "infeasible"
	case highlevel.StatusInvalidStart:
		return "invalid_start"
	case highlevel.StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
