// SPDX-License-Identifier: AGPL-3.0-only

package analyze

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/regexp"
	"github.com/pkg/errors"
	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/promql/parser"
	"golang.org/x/exp/slices"

	"github.com/grafana/dashgen/pkg/minisdk"
)

// PrometheusType is the data source type whose queries are analyzed.
const PrometheusType = "prometheus"

var (
	lvRegexp                     = regexp.MustCompile(`(?s)label_values\((.+),.+\)`)
	lvNoQueryRegexp              = regexp.MustCompile(`(?s)label_values\((.+)\)`)
	qrRegexp                     = regexp.MustCompile(`(?s)query_result\((.+)\)`)
	validMetricName              = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	variableRangeQueryRangeRegex = regexp.MustCompile(`\[\$?\w+?]`)
	variableSubqueryRangeRegex   = regexp.MustCompile(`\[\$?\w+:\$?\w+?]`)
	variableLabelValueRegex      = regexp.MustCompile(`(=~|!~|!=|=)\s*\$\{?\w+(?::\w+)?\}?`)
	variableRegex                = regexp.MustCompile(`\$\{\w+(?::\w+)?\}|\$\w+`)
	variableReplacer             = strings.NewReplacer(
		"$__interval", "5m",
		"$interval", "5m",
		"$resolution", "5s",
		"$__rate_interval", "15s",
		"$rate_interval", "15s",
		"$__range", "1d",
		"${__range_s:glob}", "30",
		"${__range_s}", "30",
	)
)

// MetricsInDashboards is the result of analyzing one or more dashboards.
type MetricsInDashboards struct {
	MetricsUsed    model.LabelValues   `json:"metricsUsed"`
	OverallMetrics map[string]struct{} `json:"-"`
	Dashboards     []DashboardMetrics  `json:"dashboards"`
}

type DashboardMetrics struct {
	UID         string   `json:"uid,omitempty"`
	Title       string   `json:"title"`
	Metrics     []string `json:"metrics"`
	ParseErrors []string `json:"parse_errors"`
}

func NewMetricsInDashboards() *MetricsInDashboards {
	return &MetricsInDashboards{OverallMetrics: map[string]struct{}{}}
}

// Finalize fills MetricsUsed with the sorted metrics of all analyzed dashboards.
func (m *MetricsInDashboards) Finalize() {
	metricsUsed := make(model.LabelValues, 0, len(m.OverallMetrics))
	for metric := range m.OverallMetrics {
		metricsUsed = append(metricsUsed, model.LabelValue(metric))
	}
	slices.Sort(metricsUsed)
	m.MetricsUsed = metricsUsed
}

// ParseMetricsInBoard collects the metrics queried by board's Prometheus targets
// and query variables. Queries that fail to parse are reported in the board's
// ParseErrors instead of failing the analysis.
func ParseMetricsInBoard(mig *MetricsInDashboards, board minisdk.Board, logger log.Logger) {
	var parseErrors []error
	metrics := make(map[string]struct{})

	for _, panel := range board.Panels {
		parseErrors = append(parseErrors, metricsFromPanel(*panel, metrics, logger)...)
		for _, subPanel := range panel.SubPanels {
			parseErrors = append(parseErrors, metricsFromPanel(subPanel, metrics, logger)...)
		}
	}

	parseErrors = append(parseErrors, metricsFromTemplating(board.Templating, metrics, logger)...)

	parseErrs := make([]string, 0, len(parseErrors))
	for _, err := range parseErrors {
		parseErrs = append(parseErrs, err.Error())
	}

	metricsInBoard := make([]string, 0, len(metrics))
	for metric := range metrics {
		if metric == "" {
			continue
		}

		metricsInBoard = append(metricsInBoard, metric)
		mig.OverallMetrics[metric] = struct{}{}
	}
	slices.Sort(metricsInBoard)

	mig.Dashboards = append(mig.Dashboards, DashboardMetrics{
		UID:         board.UID,
		Title:       board.Title,
		Metrics:     metricsInBoard,
		ParseErrors: parseErrs,
	})
}

// isPrometheus reports whether ref points at a Prometheus data source. Missing
// and legacy name references are assumed to.
func isPrometheus(ref *minisdk.DatasourceRef) bool {
	return ref == nil || ref.Type == "" || ref.Type == PrometheusType
}

func metricsFromTemplating(templating minisdk.Templating, metrics map[string]struct{}, logger log.Logger) []error {
	parseErrors := []error{}
	for _, templateVar := range templating.List {
		if templateVar.Type != "query" || !isPrometheus(templateVar.Datasource) {
			continue
		}

		query, err := templateVar.QueryString()
		if err != nil {
			parseErrors = append(parseErrors, err)
			level.Debug(logger).Log("msg", "templating parse error", "err", err)
			continue
		}

		// label_values(query, label)
		if lvRegexp.MatchString(query) {
			sm := lvRegexp.FindStringSubmatch(query)
			if len(sm) > 0 {
				query = sm[1]
			} else {
				continue
			}
		} else if lvNoQueryRegexp.MatchString(query) {
			// No query so no metric.
			continue
		} else if qrRegexp.MatchString(query) {
			// query_result(query)
			query = qrRegexp.FindStringSubmatch(query)[1]
		}
		err = parseQuery(query, metrics)
		if err != nil {
			parseErrors = append(parseErrors, errors.Wrapf(err, "query=%v", query))
			level.Debug(logger).Log("msg", "promql parse error", "err", err, "query", query)
			continue
		}
	}
	return parseErrors
}

func metricsFromPanel(panel minisdk.Panel, metrics map[string]struct{}, logger log.Logger) []error {
	var parseErrors []error

	if !panel.SupportsTargets() {
		return nil
	}

	for _, target := range panel.Targets {
		if target.Expr == "" {
			continue
		}
		ds := target.Datasource
		if ds == nil {
			ds = panel.Datasource
		}
		if !isPrometheus(ds) {
			continue
		}

		query := target.Expr
		err := parseQuery(query, metrics)
		if err != nil {
			parseErrors = append(parseErrors, errors.Wrapf(err, "panel=%q query=%v", panel.Title, query))
			level.Debug(logger).Log("msg", "promql parse error", "err", err, "query", query)
			continue
		}
	}

	return parseErrors
}

// replaceVariables turns a query using dashboard variables into valid PromQL.
// Variables used as metric names become the "variable" metric.
func replaceVariables(query string) string {
	query = variableReplacer.Replace(query)
	query = variableRangeQueryRangeRegex.ReplaceAllLiteralString(query, `[5m]`)
	query = variableSubqueryRangeRegex.ReplaceAllLiteralString(query, `[5m:1m]`)
	query = variableLabelValueRegex.ReplaceAllString(query, `${1}"variable"`)
	query = variableRegex.ReplaceAllLiteralString(query, "variable")
	return query
}

func parseQuery(query string, metrics map[string]struct{}) error {
	expr, err := parser.ParseExpr(replaceVariables(query))
	if err != nil {
		return err
	}

	parser.Inspect(expr, func(node parser.Node, _ []parser.Node) error {
		if n, ok := node.(*parser.VectorSelector); ok {
			// VectorSelector has .Name when it's explicitly set as `name{...}`.
			// Otherwise we need to look into the matchers.
			if n.Name != "" {
				metrics[n.Name] = struct{}{}
				return nil
			}
			for _, m := range n.LabelMatchers {
				if m.Name == labels.MetricName && validMetricName.MatchString(m.Value) {
					metrics[m.Value] = struct{}{}
					return nil
				}
			}
		}

		return nil
	})

	return nil
}

// Board analyzes a serialized dashboard document.
func Board(mig *MetricsInDashboards, doc []byte, logger log.Logger) error {
	board, err := minisdk.Unmarshal(doc)
	if err != nil {
		return err
	}
	ParseMetricsInBoard(mig, board, logger)
	return nil
}

func (d DashboardMetrics) String() string {
	return fmt.Sprintf("%s (%s): %d metrics, %d parse errors", d.Title, d.UID, len(d.Metrics), len(d.ParseErrors))
}
