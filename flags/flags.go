package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"

	"github.com/ethereum-optimism/infra/op-unit/filter"
	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/sink"
)

const EnvVarPrefix = "OP_UNIT"

var (
	TabSize = &cli.IntFlag{
		Name:    "tabsize",
		Aliases: []string{"t"},
		Value:   sink.DefaultTabWidth,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TABSIZE"),
		Usage:   "Number of spaces per indentation level in the report",
		Action: func(_ *cli.Context, v int) error {
			if v < 0 {
				return fmt.Errorf("tabsize must not be negative, got %d", v)
			}
			return nil
		},
	}
	Filter = &cli.StringSliceFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FILTER"),
		Usage:   "Tag used to select tests, may be repeated (eg. '--filter fast --filter math')",
	}
	FilterMode = &cli.StringFlag{
		Name:    "filter-mode",
		Value:   string(filter.ModeAll),
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FILTER_MODE"),
		Usage:   fmt.Sprintf("How filter tags select tests, one of %v", filter.Modes),
		Action: func(_ *cli.Context, v string) error {
			_, err := filter.ForMode(filter.Mode(v))
			return err
		},
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "OUTPUT"),
		Usage:   "File the report is written to, overwriting it. Empty writes to stdout",
	}
	Style = &cli.StringFlag{
		Name:    "style",
		Aliases: []string{"s"},
		Value:   string(generator.StyleConsole),
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "STYLE"),
		Usage:   fmt.Sprintf("Report style, one of %v", generator.Styles),
		Action: func(_ *cli.Context, v string) error {
			if !generator.Style(v).IsValid() {
				return fmt.Errorf("style must be one of %v, got %q", generator.Styles, v)
			}
			return nil
		},
	}
	Color = &cli.BoolFlag{
		Name:    "color",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "COLOR"),
		Usage:   "Colorize console reports written to stdout",
	}
	FailOnError = &cli.BoolFlag{
		Name:    "fail-on-error",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FAIL_ON_ERROR"),
		Usage:   "Exit with code 1 when a test fails",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONFIG"),
		Usage:   "Path to a YAML run configuration file (eg. 'unit.yaml')",
	}
	HealthzEnabled = &cli.BoolFlag{
		Name:    "healthz.enabled",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ENABLED"),
		Usage:   "Serve /healthz while tests run",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "0.0.0.0:8080",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Listen address of the healthz server",
	}
)

var optionalFlags = []cli.Flag{
	TabSize,
	Filter,
	FilterMode,
	Output,
	Style,
	Color,
	FailOnError,
	ConfigFile,
	HealthzEnabled,
	HealthzAddr,
}

var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = optionalFlags
}
