package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"credal/internal/loader"
	"credal/internal/program"
)

var (
	inlineBlocks []string
	outputFormat string
)

// normalizeCmd parses the given sources and prints the normalized form.
var normalizeCmd = &cobra.Command{
	Use:   "normalize [files...]",
	Short: "Normalize programs into grounder-ready form",
	Long: `Parses the given program sources, merges duplicate statements across
files, and prints the normalized program: deterministic logic text plus
the probabilistic facts, probabilistic rules, credal facts and queries
pulled out for the grounder.

Example:
  credal normalize model.plp evidence.plp
  credal normalize -e "0.3::a." -e "?- a."`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringArrayVarP(&inlineBlocks, "eval", "e", nil, "Inline source block (repeatable; blocks are joined with newlines)")
	normalizeCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: text or json (overrides config)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
	}

	ld := loader.New(logger)

	var prog *program.Program
	var err error
	switch {
	case len(inlineBlocks) > 0 && len(args) > 0:
		return fmt.Errorf("cannot mix inline sources with files")
	case len(inlineBlocks) > 0:
		prog, err = ld.LoadString(inlineBlocks...)
	default:
		prog, err = ld.Load(args...)
	}
	if err != nil {
		return err
	}

	return printProgram(prog)
}
