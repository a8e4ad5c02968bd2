// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/grafana/dashgen/pkg/analyze"
	"github.com/grafana/dashgen/pkg/catalog"
	"github.com/grafana/dashgen/pkg/config"
	"github.com/grafana/dashgen/pkg/emit"
	"github.com/grafana/dashgen/pkg/generate"
	"github.com/grafana/dashgen/pkg/util/version"
)

// GenerateCommand writes the selected dashboards, and pushes them to Grafana
// when an address is configured.
type GenerateCommand struct {
	configFile     string
	outputDir      string
	dashboards     flagext.StringSliceCSV
	grafanaAddress string
	grafanaAPIKey  string
	metricsOutput  string
	metrics        MetricsConfig

	fs        afero.Fs
	logConfig *LoggerConfig
	reg       *prometheus.Registry
}

// Register adds the generate command. Its metrics are registered with, and
// exported from, reg.
func (cmd *GenerateCommand) Register(app *kingpin.Application, envVars EnvVarNames, logConfig *LoggerConfig, reg *prometheus.Registry) {
	cmd.fs = afero.NewOsFs()
	cmd.logConfig = logConfig
	cmd.reg = reg

	c := app.Command("generate", "Generate the Grafana dashboard JSON files.").Action(cmd.run)
	c.Flag("config.file", "Path to the YAML configuration file. Built-in defaults are used if empty.").
		Envar(envVars.ConfigFile).
		StringVar(&cmd.configFile)
	c.Flag("output.dir", "Directory the dashboard files are written to. Overrides the configuration file; "+config.DefaultOutputDir+" if neither is set.").
		Envar(envVars.OutputDir).
		StringVar(&cmd.outputDir)
	c.Flag("dashboards", "Comma separated names of the dashboards to generate. All of them if empty.").
		Envar(envVars.Dashboards).
		SetValue(&cmd.dashboards)
	c.Flag("grafana.address", "Address of the Grafana instance to push the dashboards to.").
		Envar(envVars.GrafanaAddress).
		StringVar(&cmd.grafanaAddress)
	c.Flag("grafana.api-key", "API key used to push the dashboards to Grafana.").
		Envar(envVars.GrafanaAPIKey).
		StringVar(&cmd.grafanaAPIKey)
	c.Flag("metrics-output", "If set, also write the metrics used by the generated dashboards to this file.").
		StringVar(&cmd.metricsOutput)
	cmd.metrics.Register(c, envVars)
}

func (cmd *GenerateCommand) run(_ *kingpin.ParseContext) error {
	return cmd.Run(context.Background())
}

func (cmd *GenerateCommand) Run(ctx context.Context) error {
	logger := cmd.logConfig.Logger()

	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	defs, err := catalog.Select(cfg.Dashboards)
	if err != nil {
		return err
	}
	emitter, err := cmd.newEmitter(cfg, logger)
	if err != nil {
		return err
	}

	level.Info(logger).Log("msg", "generating dashboards", "version", version.Info(), "dashboards", len(defs), "output_dir", cfg.OutputDir)

	g := generate.NewGenerator(cfg.CatalogDataSources(), cfg.CatalogDefaults(), emitter, logger, cmd.reg)

	var used *analyze.MetricsInDashboards
	if cmd.metricsOutput != "" {
		used = analyze.NewMetricsInDashboards()
		g.OnDocument = func(doc emit.Document) {
			if err := analyze.Board(used, doc.Body, logger); err != nil {
				level.Warn(logger).Log("msg", "failed to analyze dashboard", "dashboard", doc.Name, "err", err)
			}
		}
	}

	errs := g.Run(ctx, defs)

	if used != nil {
		used.Finalize()
		errs = multierr.Append(errs, writeOut(cmd.fs, used, cmd.metricsOutput))
	}
	// Exported after failed runs too, so the failures are counted.
	if cmd.metrics.enabled() {
		errs = multierr.Append(errs, cmd.metrics.Export(ctx, cmd.reg, logger))
	}
	return errs
}

// loadConfig returns the configuration file, or the defaults, with the flags
// applied on top.
func (cmd *GenerateCommand) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cmd.configFile != "" {
		var err error
		if cfg, err = config.Load(cmd.fs, cmd.configFile); err != nil {
			return nil, err
		}
	}

	if cmd.outputDir != "" {
		cfg.OutputDir = cmd.outputDir
	}
	if len(cmd.dashboards) > 0 {
		cfg.Dashboards = cmd.dashboards
	}
	if cmd.grafanaAddress != "" {
		cfg.Grafana.Address = cmd.grafanaAddress
	}
	if cmd.grafanaAPIKey != "" {
		cfg.Grafana.APIKey = cmd.grafanaAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (cmd *GenerateCommand) newEmitter(cfg *config.Config, logger log.Logger) (emit.Emitter, error) {
	emitters := emit.Multi{emit.NewFileEmitter(cmd.fs, cfg.OutputDir, logger)}
	if cfg.Grafana.Address != "" {
		ge, err := emit.NewGrafanaEmitter(cfg.Grafana.Address, cfg.Grafana.APIKey, time.Duration(cfg.Grafana.Timeout), logger)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, ge)
	}
	return emitters, nil
}
