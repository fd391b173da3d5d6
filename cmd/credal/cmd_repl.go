package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"credal/internal/loader"
)

// replCmd interactively accumulates a program line by line.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively build and normalize a program",
	Long: `Starts a line-oriented session. Each accepted statement joins the
accumulated program; statements that fail to parse are reported and
dropped. Commands: :program prints the current normalization, :reset
clears the session, :help lists commands, :quit leaves.`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	rl, err := readline.New("credal> ")
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer rl.Close()

	sessionID := uuid.NewString()
	logger.Info("REPL session started", zap.String("session", sessionID))
	fmt.Println(paint(mutedStyle, "type :help for commands, :quit or ctrl-d to leave"))

	ld := loader.New(logger)
	var lines []string

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF, interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		switch line {
		case ":quit", ":q":
			fmt.Println("bye")
			return nil
		case ":help":
			printReplHelp()
			continue
		case ":reset":
			lines = nil
			fmt.Println(paint(mutedStyle, "session cleared"))
			continue
		case ":program":
			if len(lines) == 0 {
				fmt.Println(paint(mutedStyle, "(empty)"))
				continue
			}
			prog, err := ld.LoadString(lines...)
			if err != nil {
				fmt.Println(paint(errorStyle, err.Error()))
				continue
			}
			if err := printProgram(prog); err != nil {
				return err
			}
			continue
		}

		candidate := append(append([]string{}, lines...), line)
		prog, err := ld.LoadString(candidate...)
		if err != nil {
			fmt.Println(paint(errorStyle, err.Error()))
			continue
		}
		lines = candidate
		fmt.Println(paint(mutedStyle, summarize(prog)))
	}

	fmt.Println("bye")
	return nil
}

func printReplHelp() {
	fmt.Println(`  :program   print the normalized form of the session
  :reset     drop every statement entered so far
  :help      show this help
  :quit      leave (ctrl-d works too)`)
}
