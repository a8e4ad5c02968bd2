// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/grafana/dashgen/pkg/analyze"
)

const defaultAnalyzeOutput = "metrics-in-dashboards.json"

// AnalyzeCommand lists the Prometheus metrics queried by dashboard files.
type AnalyzeCommand struct {
	files      []string
	outputFile string

	fs        afero.Fs
	logConfig *LoggerConfig
}

func (cmd *AnalyzeCommand) Register(app *kingpin.Application, logConfig *LoggerConfig) {
	cmd.fs = afero.NewOsFs()
	cmd.logConfig = logConfig

	c := app.Command("analyze", "Extract the Prometheus metrics used by dashboard JSON files.").Action(cmd.run)
	c.Arg("files", "Dashboard files to analyze.").Required().StringsVar(&cmd.files)
	c.Flag("output", "The path for the output file").
		Default(defaultAnalyzeOutput).
		StringVar(&cmd.outputFile)
}

func (cmd *AnalyzeCommand) run(_ *kingpin.ParseContext) error {
	output, err := cmd.analyzeFiles()
	if err != nil {
		return err
	}
	return writeOut(cmd.fs, output, cmd.outputFile)
}

// analyzeFiles fails if a file can't be read, and skips files that are not
// dashboards.
func (cmd *AnalyzeCommand) analyzeFiles() (*analyze.MetricsInDashboards, error) {
	logger := cmd.logConfig.Logger()
	output := analyze.NewMetricsInDashboards()

	for _, file := range cmd.files {
		buf, err := afero.ReadFile(cmd.fs, file)
		if err != nil {
			return nil, errors.Wrap(err, "reading dashboard")
		}
		if err := analyze.Board(output, buf, logger); err != nil {
			level.Warn(logger).Log("msg", "skipping file", "file", file, "err", err)
			continue
		}
	}
	output.Finalize()

	for _, d := range output.Dashboards {
		level.Info(logger).Log("msg", "analyzed dashboard", "dashboard", d.String())
	}
	return output, nil
}

func writeOut(fs afero.Fs, mig *analyze.MetricsInDashboards, outputFile string) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(mig, "", "  ")
	if err != nil {
		return err
	}

	return errors.Wrap(afero.WriteFile(fs, outputFile, out, 0o666), "writing analysis")
}
