// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/dashgen/pkg/commands"
	"github.com/grafana/dashgen/pkg/util/version"
)

var (
	analyzeCommand  commands.AnalyzeCommand
	generateCommand commands.GenerateCommand
	listCommand     commands.ListCommand
	logConfig       commands.LoggerConfig
)

func main() {
	app := kingpin.New("dashgen", "Generate Grafana dashboards as code.")

	envVars := commands.NewEnvVarsWithPrefix("DASHGEN")

	// The log flags are global and set up the logger every command uses.
	logConfig.Register(app, envVars)

	reg := prometheus.NewRegistry()
	reg.MustRegister(version.NewCollector())

	generateCommand.Register(app, envVars, &logConfig, reg)
	listCommand.Register(app)
	analyzeCommand.Register(app, &logConfig)

	app.Command("version", "Get the version of the dashgen CLI").Action(func(*kingpin.ParseContext) error {
		fmt.Fprintln(os.Stdout, version.Print("dashgen"))
		return nil
	})

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
