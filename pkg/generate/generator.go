// SPDX-License-Identifier: AGPL-3.0-only

package generate

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/multierr"

	"github.com/grafana/dashgen/pkg/catalog"
	"github.com/grafana/dashgen/pkg/dashboard"
	"github.com/grafana/dashgen/pkg/emit"
)

// Failure reasons of the dashgen_dashboards_failed_total metric.
const (
	reasonBuild     = "build"
	reasonSerialize = "serialize"
	reasonEmit      = "emit"
)

type metrics struct {
	generated    prometheus.Counter
	failed       *prometheus.CounterVec
	bytesWritten prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		generated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dashgen_dashboards_generated_total",
			Help: "Total number of dashboards successfully generated and written.",
		}),
		failed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dashgen_dashboards_failed_total",
			Help: "Total number of dashboards that failed to generate, by reason.",
		}, []string{"reason"}),
		bytesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dashgen_dashboard_bytes_written_total",
			Help: "Total number of bytes of dashboard documents written.",
		}),
	}
	for _, reason := range []string{reasonBuild, reasonSerialize, reasonEmit} {
		m.failed.WithLabelValues(reason)
	}
	return m
}

// Generator builds, serializes and emits dashboard definitions.
type Generator struct {
	ds       catalog.DataSources
	defaults catalog.Defaults

	serializer *dashboard.Serializer
	emitter    emit.Emitter
	logger     log.Logger
	metrics    *metrics

	// OnDocument, if set, is called with every document after it is emitted.
	OnDocument func(emit.Document)
}

func NewGenerator(ds catalog.DataSources, defaults catalog.Defaults, emitter emit.Emitter, logger log.Logger, reg prometheus.Registerer) *Generator {
	return &Generator{
		ds:         ds,
		defaults:   defaults,
		serializer: dashboard.NewSerializer(),
		emitter:    emitter,
		logger:     logger,
		metrics:    newMetrics(reg),
	}
}

// Run generates every definition in order. A definition that fails to build
// or serialize is skipped and the run goes on with the next one. A failure to
// emit, or a canceled ctx, stops the run. The returned error combines the
// failures of every dashboard.
func (g *Generator) Run(ctx context.Context, defs []catalog.Definition) error {
	var errs error
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		logger := log.With(g.logger, "dashboard", def.Name)
		reason, err := g.generate(ctx, def, logger)
		if err == nil {
			g.metrics.generated.Inc()
			continue
		}

		g.metrics.failed.WithLabelValues(reason).Inc()
		level.Error(logger).Log("msg", "failed to generate dashboard", "stage", reason, "err", err)
		errs = multierr.Append(errs, errors.Wrapf(err, "dashboard %q", def.Name))
		if reason == reasonEmit {
			return errs
		}
	}
	return errs
}

func (g *Generator) generate(ctx context.Context, def catalog.Definition, logger log.Logger) (string, error) {
	d, err := def.Build(g.ds, g.defaults)
	if err != nil {
		return reasonBuild, err
	}
	level.Debug(logger).Log("msg", "built dashboard", "uid", d.UID, "panels", len(d.Panels), "variables", len(d.Variables))

	body, err := g.serializer.Serialize(d)
	if err != nil {
		return reasonSerialize, err
	}

	doc := emit.Document{Name: def.Name, FileName: def.FileName, Body: body}
	if err := g.emitter.Emit(ctx, doc); err != nil {
		return reasonEmit, err
	}
	g.metrics.bytesWritten.Add(float64(len(body)))

	if g.OnDocument != nil {
		g.OnDocument(doc)
	}
	return "", nil
}
