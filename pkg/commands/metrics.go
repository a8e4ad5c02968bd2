// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/multierr"

	"github.com/grafana/dashgen/pkg/util/version"
)

const pushJobName = "dashgen"

// MetricsConfig controls where the metrics of a run end up once it is over:
// a file for the node exporter textfile collector, a Pushgateway, or both.
type MetricsConfig struct {
	Textfile    string
	PushURL     string
	PushJob     string
	PushTimeout time.Duration
}

func (m *MetricsConfig) Register(c *kingpin.CmdClause, envVars EnvVarNames) {
	c.Flag("metrics.textfile", "If set, write the metrics of the run to this file in the text exposition format, for the node exporter textfile collector.").
		Envar(envVars.MetricsTextfile).
		StringVar(&m.Textfile)
	c.Flag("metrics.push-url", "If set, push the metrics of the run to the Pushgateway at this address.").
		Envar(envVars.MetricsPushURL).
		StringVar(&m.PushURL)
	c.Flag("metrics.push-job", "Job label of the metrics pushed to the Pushgateway.").
		Default(pushJobName).
		StringVar(&m.PushJob)
	c.Flag("metrics.push-timeout", "Timeout of the push to the Pushgateway.").
		Default("10s").
		DurationVar(&m.PushTimeout)
}

func (m *MetricsConfig) enabled() bool {
	return m.Textfile != "" || m.PushURL != ""
}

// Export writes or pushes everything g gathers. Both destinations are tried
// even if the first fails.
func (m *MetricsConfig) Export(ctx context.Context, g prometheus.Gatherer, logger log.Logger) error {
	var errs error
	if m.Textfile != "" {
		if err := prometheus.WriteToTextfile(m.Textfile, g); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "writing metrics to %s", m.Textfile))
		} else {
			level.Debug(logger).Log("msg", "metrics written", "path", m.Textfile)
		}
	}
	if m.PushURL != "" {
		job := m.PushJob
		if job == "" {
			job = pushJobName
		}
		pusher := push.New(m.PushURL, job).
			Gatherer(g).
			Client(&http.Client{Timeout: m.PushTimeout, Transport: version.Transport(nil)})
		if err := pusher.PushContext(ctx); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "pushing metrics to %s", m.PushURL))
		} else {
			level.Debug(logger).Log("msg", "metrics pushed", "url", m.PushURL, "job", job)
		}
	}
	return errs
}
