package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/config"
	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/testutil"
)

func runWith(t *testing.T, c *Collector, cfg config.Config, text, input string) *engine.Result {
	t.Helper()
	l, err := engine.Load(cfg, text, input, engine.WithHooks(c.Hooks()))
	require.NoError(t, err)
	res, err := l.Machine.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestCollector_WriteFile(t *testing.T) {
	c := New()
	runWith(t, c, config.Default(), testutil.Increment, "1011")
	runWith(t, c, config.Default(), testutil.HaltOnOne, "0")

	path := filepath.Join(t.TempDir(), "turing.prom")
	require.NoError(t, c.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "turing_steps_total 8\n")
	assert.Contains(t, out, `turing_runs_total{status="halted"} 1`)
	assert.Contains(t, out, `turing_runs_total{status="no_transition"} 1`)
	assert.Contains(t, out, "turing_tape_growths_total 0\n")
	assert.Contains(t, out, "turing_tape_cells 4096\n")
	assert.Contains(t, out, "turing_run_steps_count 2\n")
}

func TestCollector_CountsGrowth(t *testing.T) {
	cfg := config.Default()
	cfg.InitialCapacity = 4
	cfg.MaxSteps = 8

	c := New()
	res := runWith(t, c, cfg, testutil.RunRight, "1")
	require.Equal(t, engine.StepLimitExceeded, res.Status)

	path := filepath.Join(t.TempDir(), "turing.prom")
	require.NoError(t, c.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "turing_steps_total 8\n")
	assert.Contains(t, string(data), `turing_runs_total{status="step_limit_exceeded"} 1`)
	assert.Contains(t, string(data), "turing_tape_growths_total 2\n")
	assert.Contains(t, string(data), "turing_tape_cells 16\n")
}

func TestCollector_Registry(t *testing.T) {
	c := New()
	families, err := c.registry.Gather()
	require.NoError(t, err)
	// the labelled counter has no series until a run finishes
	assert.Len(t, families, 4)
}
