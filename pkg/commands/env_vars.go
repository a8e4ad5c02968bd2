// SPDX-License-Identifier: AGPL-3.0-only

package commands

// EnvVarNames are the environment variables flags can be set from.
type EnvVarNames struct {
	ConfigFile     string
	OutputDir      string
	Dashboards     string
	GrafanaAddress string
	GrafanaAPIKey  string
	LogLevel       string

	MetricsTextfile string
	MetricsPushURL  string
}

func NewEnvVarsWithPrefix(prefix string) EnvVarNames {
	const (
		configFile     = "CONFIG_FILE"
		outputDir      = "OUTPUT_DIR"
		dashboards     = "DASHBOARDS"
		grafanaAddress = "GRAFANA_ADDRESS"
		grafanaAPIKey  = "GRAFANA_API_KEY"
		logLevel       = "LOG_LEVEL"

		metricsTextfile = "METRICS_TEXTFILE"
		metricsPushURL  = "METRICS_PUSH_URL"
	)

	if len(prefix) > 0 && prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}

	return EnvVarNames{
		ConfigFile:     prefix + configFile,
		OutputDir:      prefix + outputDir,
		Dashboards:     prefix + dashboards,
		GrafanaAddress: prefix + grafanaAddress,
		GrafanaAPIKey:  prefix + grafanaAPIKey,
		LogLevel:       prefix + logLevel,

		MetricsTextfile: prefix + metricsTextfile,
		MetricsPushURL:  prefix + metricsPushURL,
	}
}
