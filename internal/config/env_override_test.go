package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Output(t *testing.T) {
	t.Run("CREDAL_OUTPUT_FORMAT overrides format", func(t *testing.T) {
		t.Setenv("CREDAL_OUTPUT_FORMAT", "json")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "json", cfg.Output.Format)
	})

	t.Run("CREDAL_NO_COLOR disables color", func(t *testing.T) {
		t.Setenv("CREDAL_NO_COLOR", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Output.Color)
	})

	t.Run("NO_COLOR is honored too", func(t *testing.T) {
		t.Setenv("CREDAL_NO_COLOR", "")
		t.Setenv("NO_COLOR", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Output.Color)
	})

	t.Run("empty env leaves defaults", func(t *testing.T) {
		t.Setenv("CREDAL_OUTPUT_FORMAT", "")
		t.Setenv("CREDAL_NO_COLOR", "")
		t.Setenv("NO_COLOR", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "text", cfg.Output.Format)
		assert.True(t, cfg.Output.Color)
	})
}

func TestEnvOverrides_WatchAndSolver(t *testing.T) {
	t.Setenv("CREDAL_WATCH_DEBOUNCE", "250ms")
	t.Setenv("CREDAL_SOLVER", "/usr/local/bin/clingo")
	t.Setenv("CREDAL_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "250ms", cfg.Watch.Debounce)
	assert.Equal(t, "/usr/local/bin/clingo", cfg.Solver.Command)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
