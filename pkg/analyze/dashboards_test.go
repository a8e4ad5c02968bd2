// SPDX-License-Identifier: AGPL-3.0-only

package analyze

import (
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/dashgen/pkg/minisdk"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		query           string
		expectedMetrics []string
		shouldError     bool
	}{
		{query: `sum(rate(my_metric[$__interval])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(rate(my_metric[$interval])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(rate(my_metric[$resolution])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(rate(my_metric[$__rate_interval])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(rate(my_metric[$__range])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(rate(my_metric[$agregation_window])) by (my_label) > 0`, expectedMetrics: []string{"my_metric"}},
		{query: `max_over_time(my_metric[$window:$step])`, expectedMetrics: []string{"my_metric"}},
		{query: `sum(my_metric)`, expectedMetrics: []string{"my_metric"}},
		{query: `my_metric`, expectedMetrics: []string{"my_metric"}},
		{query: `{__name__="my_metric", job="a"}`, expectedMetrics: []string{"my_metric"}},
		{query: `my_metric{label=${value}}`, expectedMetrics: []string{"my_metric"}},
		{query: `my_metric{label=${value:format}}`, expectedMetrics: []string{"my_metric"}},
		{query: `my_metric{label=$value}`, expectedMetrics: []string{"my_metric"}},
		{query: `my_metric{label!=$value}`, expectedMetrics: []string{"my_metric"}},
		{query: `$my_metric{label=$value}`, expectedMetrics: []string{"variable"}},
		{query: `${my_metric}{label=$value}`, expectedMetrics: []string{"variable"}},
		{query: `${my_metric:format}{label=$value}`, expectedMetrics: []string{"variable"}},
		{query: `cpu_usage{instance="server1", region="$region"}`, expectedMetrics: []string{"cpu_usage"}},
		{query: `avg(cpu_usage{instance="server1"}) by (instance)`, expectedMetrics: []string{"cpu_usage"}},
		{query: `sum(rate(a[5m])) / sum(rate(b[5m]))`, expectedMetrics: []string{"a", "b"}},
		{query: `sum(rate(my_metric[5m]) by (`, shouldError: true},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			metrics := make(map[string]struct{})
			err := parseQuery(test.query, metrics)
			if test.shouldError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			got := make([]string, 0, len(metrics))
			for m := range metrics {
				got = append(got, m)
			}
			assert.ElementsMatch(t, test.expectedMetrics, got)
		})
	}
}

const regionDashboard = `{
  "uid": "cpu-usage-by-region",
  "title": "CPU Usage by Region Dashboard",
  "templating": {"list": [
    {"type": "query", "name": "region", "datasource": {"type": "prometheus", "uid": "prometheus"}, "query": "label_values(cpu_usage, region)"},
    {"type": "query", "name": "nodes", "datasource": {"type": "prometheus", "uid": "prometheus"}, "query": "label_values(node_uname_info{region=\"$region\"}, nodename)"},
    {"type": "query", "name": "all", "query": "label_values(job)"},
    {"type": "custom", "name": "static", "query": "a,b,c"}
  ]},
  "panels": [
    {"id": 1, "type": "gauge", "title": "CPU (server1 - ${region})",
     "datasource": {"type": "prometheus", "uid": "prometheus"},
     "targets": [{"datasource": {"type": "prometheus", "uid": "prometheus"}, "expr": "cpu_usage{instance=\"server1\", region=\"$region\"}", "refId": "A"}]},
    {"id": 2, "type": "timeseries", "title": "Memory",
     "datasource": {"type": "prometheus", "uid": "prometheus"},
     "targets": [{"expr": "sum(rate(memory_bytes[$__rate_interval]))", "refId": "A"}, {"expr": "sum(", "refId": "B"}]},
    {"id": 3, "type": "state-timeline", "title": "Logs",
     "targets": [{"datasource": {"type": "loki", "uid": "Loki"}, "expr": "count_over_time({service_name=\"backend\"} |= \"error\" [1m])", "refId": "A"}]},
    {"id": 4, "type": "text", "title": "Notes"}
  ]
}`

func TestParseMetricsInBoard(t *testing.T) {
	board, err := minisdk.Unmarshal([]byte(regionDashboard))
	require.NoError(t, err)

	output := NewMetricsInDashboards()
	ParseMetricsInBoard(output, board, log.NewNopLogger())
	output.Finalize()

	require.Len(t, output.Dashboards, 1)
	dash := output.Dashboards[0]
	assert.Equal(t, "cpu-usage-by-region", dash.UID)
	assert.Equal(t, []string{"cpu_usage", "memory_bytes", "node_uname_info"}, dash.Metrics)
	require.Len(t, dash.ParseErrors, 1)
	assert.Contains(t, dash.ParseErrors[0], `panel="Memory"`)

	assert.Equal(t, "cpu_usage", string(output.MetricsUsed[0]))
	assert.Len(t, output.MetricsUsed, 3)
}

func TestBoardAccumulatesAcrossDashboards(t *testing.T) {
	output := NewMetricsInDashboards()
	require.NoError(t, Board(output, []byte(regionDashboard), log.NewNopLogger()))
	require.NoError(t, Board(output, []byte(`{"uid": "other", "title": "Other", "panels": [
    {"type": "stat", "title": "Up", "targets": [{"expr": "up", "refId": "A"}]}
  ]}`), log.NewNopLogger()))
	output.Finalize()

	assert.Len(t, output.Dashboards, 2)
	assert.Equal(t, "Other (other): 1 metrics, 0 parse errors", output.Dashboards[1].String())

	got := make([]string, 0, len(output.MetricsUsed))
	for _, m := range output.MetricsUsed {
		got = append(got, string(m))
	}
	assert.Equal(t, []string{"cpu_usage", "memory_bytes", "node_uname_info", "up"}, got)

	require.Error(t, Board(output, []byte(`{"panels": 12}`), log.NewNopLogger()))
}
