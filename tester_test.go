package unit

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-unit/exitcodes"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/testcase"
)

func TestTesterRunsOnceAndRequestsShutdown(t *testing.T) {
	reg := registry.New()
	reg.Test("passes", func(t *testcase.T) { t.Message("fine") })
	reg.Test("fails", func(t *testcase.T) { t.Expect(false) })

	cfg := DefaultConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.txt")
	cfg.Log = quiet

	var closed atomic.Bool
	a, err := newTester(cfg, reg, nil, func(error) { closed.Store(true) })
	require.NoError(t, err)
	assert.Equal(t, "idle", a.status())

	require.NoError(t, a.Start(context.Background()), "failures do not fail the run by default")
	assert.Eventually(t, closed.Load, time.Second, 5*time.Millisecond)
	assert.False(t, a.Stopped())
	assert.Equal(t, "fail", a.status())
	require.NotNil(t, a.Result())
	assert.Equal(t, 1, a.Result().Stats.Failed)

	require.NoError(t, a.Stop(context.Background()))
	assert.True(t, a.Stopped())
	require.NoError(t, a.Stop(context.Background()))
}

func TestTesterFailOnError(t *testing.T) {
	reg := registry.New()
	reg.Test("fails", func(t *testcase.T) { t.Fatal(false) })

	cfg := DefaultConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.txt")
	cfg.FailOnError = true
	cfg.Log = quiet

	a, err := newTester(cfg, reg, nil, func(error) { t.Error("shutdown must not be requested") })
	require.NoError(t, err)

	err = a.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.Equal(t, 1, ExitCode(err))
	assert.True(t, a.Stopped())
}

func TestTesterRuntimeError(t *testing.T) {
	reg := registry.New()
	reg.Test("any", func(t *testcase.T) {})

	cfg := DefaultConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "report.txt")
	cfg.Log = quiet

	a, err := newTester(cfg, reg, nil, func(error) {})
	require.NoError(t, err)

	err = a.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Equal(t, 2, ExitCode(err))
	assert.Equal(t, "error", a.status())
}

func TestNewTesterRequiresConfig(t *testing.T) {
	_, err := newTester(nil, registry.New(), nil, func(error) {})
	require.Error(t, err)
}

func TestNewAppCommandLine(t *testing.T) {
	reg := registry.New()
	reg.Suite("cli", func() {
		reg.Test("works", func(t *testcase.T) { t.Expect(true) }, "fast")
	})

	path := filepath.Join(t.TempDir(), "report.jsonl")
	app := NewApp(reg)
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	require.NoError(t, app.Run([]string{"op-unit", "--style", "json", "--output", path, "--log.level", "error"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"cli/works"`)
	assert.Contains(t, string(data), `"event":"global_end"`)
}

func TestNewAppInvalidFlagsExitAsRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown style", args: []string{"--style", "bogus"}},
		{name: "negative tab size", args: []string{"--tabsize", "-3"}},
		{name: "unknown filter mode", args: []string{"--filter-mode", "most"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp(registry.New())
			app.Writer = io.Discard
			app.ErrWriter = io.Discard

			err := app.Run(append([]string{"op-unit"}, tt.args...))
			require.Error(t, err)
			assert.Equal(t, exitcodes.RuntimeErr, ExitCode(err))
		})
	}
}
