package unit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-unit/filter"
	"github.com/ethereum-optimism/infra/op-unit/flags"
	"github.com/ethereum-optimism/infra/op-unit/generator"
	"github.com/ethereum-optimism/infra/op-unit/registry"
	"github.com/ethereum-optimism/infra/op-unit/runner"
	"github.com/ethereum-optimism/infra/op-unit/sink"
)

// Config holds the run configuration
type Config struct {
	TabWidth    int      // Spaces per indentation level
	Filter      []string // Tags selecting tests, empty runs everything
	FilterMode  string   // How Filter selects tests, see filter.Modes
	OutputFile  string   // Report destination, empty for stdout
	Style       string   // Report style, see generator.Styles
	Color       bool     // Colorize console output
	FailOnError bool     // Turn failed tests into a TestFailureError
	Log         log.Logger
}

// DefaultConfig returns the configuration RunAll uses.
func DefaultConfig() *Config {
	return &Config{
		TabWidth:   sink.DefaultTabWidth,
		FilterMode: string(filter.ModeAll),
		Style:      string(generator.StyleConsole),
	}
}

// fileConfig is the YAML layout of a config file. Absent keys leave the
// configuration untouched.
type fileConfig struct {
	TabSize *int `yaml:"tabsize"`
	Filter  struct {
		Tags []string `yaml:"tags"`
		Mode *string  `yaml:"mode"`
	} `yaml:"filter"`
	Output      *string `yaml:"output"`
	Style       *string `yaml:"style"`
	Color       *bool   `yaml:"color"`
	FailOnError *bool   `yaml:"fail-on-error"`
}

// LoadConfigFile applies the YAML file at path on top of cfg.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.TabSize != nil {
		cfg.TabWidth = *fc.TabSize
	}
	if fc.Filter.Tags != nil {
		cfg.Filter = fc.Filter.Tags
	}
	if fc.Filter.Mode != nil {
		cfg.FilterMode = *fc.Filter.Mode
	}
	if fc.Output != nil {
		cfg.OutputFile = *fc.Output
	}
	if fc.Style != nil {
		cfg.Style = *fc.Style
	}
	if fc.Color != nil {
		cfg.Color = *fc.Color
	}
	if fc.FailOnError != nil {
		cfg.FailOnError = *fc.FailOnError
	}
	return nil
}

// NewConfig creates a new Config from cli context. Values from the --config
// file are used unless the matching flag is set explicitly.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Log = log

	if path := ctx.String(flags.ConfigFile.Name); path != "" {
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet(flags.TabSize.Name) {
		cfg.TabWidth = ctx.Int(flags.TabSize.Name)
	}
	if ctx.IsSet(flags.Filter.Name) {
		cfg.Filter = ctx.StringSlice(flags.Filter.Name)
	}
	if ctx.IsSet(flags.FilterMode.Name) {
		cfg.FilterMode = ctx.String(flags.FilterMode.Name)
	}
	if ctx.IsSet(flags.Output.Name) {
		cfg.OutputFile = ctx.String(flags.Output.Name)
	}
	if ctx.IsSet(flags.Style.Name) {
		cfg.Style = ctx.String(flags.Style.Name)
	}
	if ctx.IsSet(flags.Color.Name) {
		cfg.Color = ctx.Bool(flags.Color.Name)
	}
	if ctx.IsSet(flags.FailOnError.Name) {
		cfg.FailOnError = ctx.Bool(flags.FailOnError.Name)
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Check validates the configuration.
func (c *Config) Check() error {
	var errs []error
	if c.TabWidth < 0 {
		errs = append(errs, fmt.Errorf("tab width must not be negative, got %d", c.TabWidth))
	}
	if _, err := filter.ForMode(filter.Mode(c.FilterMode)); err != nil {
		errs = append(errs, err)
	}
	if c.Style != "" && !generator.Style(c.Style).IsValid() {
		errs = append(errs, fmt.Errorf("unknown style %q, must be one of %v", c.Style, generator.Styles))
	}
	return errors.Join(errs...)
}

// predicate returns the filter predicate; without filter tags every test runs.
func (c *Config) predicate() (filter.Predicate, error) {
	if len(c.Filter) == 0 {
		return filter.Always, nil
	}
	return filter.ForMode(filter.Mode(c.FilterMode))
}

// RunConfig runs the registered tests as described by cfg.
func RunConfig(ctx context.Context, cfg *Config) (*runner.RunnerResult, error) {
	return runConfig(ctx, registry.Default, cfg)
}

func runConfig(ctx context.Context, reg *registry.Registry, cfg *Config) (*runner.RunnerResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}

	gen, err := generator.New(generator.Style(cfg.Style), generator.Options{
		TabWidth: cfg.TabWidth,
		Color:    cfg.Color,
		Log:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	pred, err := cfg.predicate()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	r, err := runner.New(runner.Config{
		Registry:   reg,
		Generator:  gen,
		Filter:     pred,
		FilterTags: cfg.Filter,
		Output:     sink.ForPath(cfg.OutputFile),
		Log:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	result, err := r.Run(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.FailOnError && len(result.Failed()) > 0 {
		return result, NewTestFailureError(result.String())
	}
	return result, nil
}
