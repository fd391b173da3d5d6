package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"credal/internal/loader"
	"credal/internal/program"
	"credal/internal/watch"
)

// watchCmd keeps re-normalizing the sources as they change on disk.
var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Re-normalize whenever a source file changes",
	Long: `Normalizes the given sources once, then watches their directories and
re-runs the whole pipeline after changes settle. Rapid saves are
debounced (see the watch.debounce config key).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ld := loader.New(logger)

	// First pass before watching starts, so a broken input is visible
	// immediately rather than after the first edit.
	if prog, err := ld.Load(args...); err != nil {
		fmt.Printf("%s %v\n", paint(errorStyle, "FAIL"), err)
	} else {
		fmt.Printf("%s %s\n", paint(successStyle, "ok"), summarize(prog))
	}

	onChange := func(runID string, prog *program.Program, err error) {
		if err != nil {
			fmt.Printf("%s [%s] %v\n", paint(errorStyle, "FAIL"), shortID(runID), err)
			return
		}
		fmt.Printf("%s [%s] %s\n", paint(successStyle, "ok"), shortID(runID), summarize(prog))
	}

	w, err := watch.New(args, cfg, ld, logger, onChange)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Println(paint(mutedStyle, "watching for changes, interrupt to stop"))

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal")
	w.Stop()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
