package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"credal/internal/program"
)

// printProgram renders prog in the configured output format.
func printProgram(prog *program.Program) error {
	switch cfg.Output.Format {
	case "json":
		data, err := json.MarshalIndent(prog, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal program: %w", err)
		}
		fmt.Println(string(data))
	default:
		fmt.Print(prog.String())
	}
	return nil
}

// summarize returns a one-line account of the program's shape.
func summarize(prog *program.Program) string {
	logic := 0
	if prog.Logic != "" {
		logic = strings.Count(prog.Logic, "\n") + 1
	}
	return fmt.Sprintf("%d logic, %d probabilistic facts, %d probabilistic rules, %d credal facts, %d queries",
		logic, len(prog.ProbFacts), len(prog.ProbRules), len(prog.CredalFacts), len(prog.Queries))
}
