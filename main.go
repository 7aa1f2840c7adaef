package unit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-unit/flags"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

// NewApp returns the command line application running the tests of reg.
func NewApp(reg *registry.Registry) *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-unit"
	app.Usage = "Self-registering unit test runner"
	app.Description = "op-unit runs the unit tests registered in this binary"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(func(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
		return setup(ctx, reg, closeApp)
	})
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), ExitCode(err)))
		}
	}
	return app
}

// Main runs the tests registered in registry.Default as a command line
// application and exits the process with the resulting exit code.
func Main() {
	app := NewApp(registry.Default)

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error("Application failed", "message", err)
		shutdown()
		os.Exit(ExitCode(err))
	}
}

func setup(ctx *cli.Context, reg *registry.Registry, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	logger := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(logger.Handler())
	oplog.SetupDefaults()

	cfg, err := NewConfig(ctx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return nil, NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config", "config", cfg)

	var svcCfg *service.Config
	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	healthz := ctx.Bool(flags.HealthzEnabled.Name)
	if healthz || metricsCfg.Enabled {
		svcCfg = &service.Config{
			HealthzEnabled: healthz,
			HealthzAddr:    ctx.String(flags.HealthzAddr.Name),
			MetricsEnabled: metricsCfg.Enabled,
			MetricsAddr:    net.JoinHostPort(metricsCfg.ListenAddr, strconv.Itoa(metricsCfg.ListenPort)),
		}
	}

	a, err := newTester(cfg, reg, svcCfg, closeApp)
	if err != nil {
		return nil, NewRuntimeError(fmt.Errorf("failed to create tester: %w", err))
	}
	return a, nil
}
