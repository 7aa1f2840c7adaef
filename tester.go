package unit

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/runner"
	"github.com/ethereum-optimism/infra/op-unit/service"
	"github.com/ethereum-optimism/infra/op-unit/types"
)

// tester implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &tester{}

// tester runs the registered tests once and asks the CLI to exit.
type tester struct {
	config   *Config
	registry *registry.Registry
	svc      *service.Service
	result   *runner.RunnerResult
	state    atomic.Value // string describing the run, served by healthz

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

func newTester(config *Config, reg *registry.Registry, svcCfg *service.Config, shutdownCallback func(error)) (*tester, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Log == nil {
		config.Log = log.Root()
	}
	a := &tester{
		config:           config,
		registry:         reg,
		shutdownCallback: shutdownCallback,
	}
	a.state.Store("idle")
	if svcCfg != nil {
		svcCfg.Status = a.status
		svcCfg.Log = config.Log
		a.svc = service.New(*svcCfg)
	}
	return a, nil
}

func (a *tester) status() string {
	return a.state.Load().(string)
}

// Start runs the tests.
// Start implements the cliapp.Lifecycle interface.
func (a *tester) Start(ctx context.Context) error {
	a.running.Store(true)
	if a.svc != nil {
		a.svc.Start(ctx)
	}

	a.config.Log.Info("Running unit tests", "declared", a.registry.Declared(), "style", a.config.Style,
		"filter", a.config.Filter, "filterMode", a.config.FilterMode, "output", a.config.OutputFile)
	a.state.Store("running")

	result, err := runConfig(ctx, a.registry, a.config)
	if result != nil {
		a.result = result
		a.state.Store(string(result.Status))
		a.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status,
			"executed", result.Stats.Executed, "failed", result.Stats.Failed, "skipped", result.Stats.Skipped)
	}
	if err != nil {
		// The CLI does not call Stop when Start fails.
		_ = a.Stop(ctx)
		if IsTestFailureError(err) {
			a.config.Log.Warn("Test run completed with failures, returning exit code 1")
			return err
		}
		a.state.Store("error")
		a.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}
	if result.Status == types.TestStatusFail {
		a.config.Log.Warn("Some tests failed", "failed", result.Stats.Failed)
	}

	go a.shutdownCallback(nil)
	return nil
}

// Stop implements the cliapp.Lifecycle interface.
func (a *tester) Stop(ctx context.Context) error {
	if !a.running.Swap(false) {
		a.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	if a.svc != nil {
		a.svc.Shutdown()
	}
	a.config.Log.Info("op-unit stopped")
	return nil
}

// Stopped implements the cliapp.Lifecycle interface.
func (a *tester) Stopped() bool {
	return !a.running.Load()
}

// Result returns the result of the last run, nil before the first one.
func (a *tester) Result() *runner.RunnerResult {
	return a.result
}
