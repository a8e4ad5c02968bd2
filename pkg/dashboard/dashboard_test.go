// SPDX-License-Identifier: AGPL-3.0-only

package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/dashgen/pkg/dashboard"
)

func mustGauge(t *testing.T, title string, pos dashboard.GridPos, instance string) dashboard.Panel {
	t.Helper()
	p, err := dashboard.CPUGauge(title, pos, instance, prom)
	require.NoError(t, err)
	return p
}

func regionVariable() dashboard.Variable {
	return dashboard.NewQueryVariable("region", "label_values(cpu_usage, region)", prom).
		WithLabel("Region").
		WithRefresh(dashboard.RefreshOnTimeRangeChange).
		WithSort(dashboard.SortAlphabeticalAsc)
}

func TestBuilderBuild(t *testing.T) {
	d, err := dashboard.NewBuilder("CPU Usage Dashboard").
		UID("cpu-usage").
		Tags("cpu", "demo").
		Refresh("5s").
		Time("now-15m", "now").
		WithPanel(mustGauge(t, "CPU Usage (server1)", dashboard.NewGridPos(0, 0, 8, 8), "server1")).
		WithPanel(mustGauge(t, "CPU Usage (server2)", dashboard.NewGridPos(8, 0, 8, 8), "server2")).
		WithVariable(regionVariable()).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "cpu-usage", d.UID)
	assert.Equal(t, []string{"cpu", "demo"}, d.Tags)
	assert.Equal(t, dashboard.TimeRange{From: "now-15m", To: "now"}, d.Time)
	assert.Equal(t, "browser", d.Timezone)
	require.Len(t, d.Panels, 2)
	assert.Equal(t, "CPU Usage (server1)", d.Panels[0].Title)
	assert.Equal(t, "CPU Usage (server2)", d.Panels[1].Title)
	require.Len(t, d.Variables, 1)
	assert.Equal(t, "region", d.Variables[0].Name)
}

func TestBuilderBuildValidation(t *testing.T) {
	base := func() *dashboard.Builder {
		return dashboard.NewBuilder("Title").UID("uid").
			WithPanel(mustGauge(t, "CPU", dashboard.NewGridPos(0, 0, 8, 8), "server1"))
	}

	tests := map[string]struct {
		builder *dashboard.Builder
		field   string
	}{
		"missing uid": {
			builder: dashboard.NewBuilder("Title"),
			field:   "uid",
		},
		"uid with a slash": {
			builder: base().UID("cpu/usage"),
			field:   "uid",
		},
		"uid with spaces": {
			builder: base().UID("cpu usage"),
			field:   "uid",
		},
		"uid too long": {
			builder: base().UID("a-very-long-dashboard-uid-that-grafana-rejects"),
			field:   "uid",
		},
		"empty title": {
			builder: dashboard.NewBuilder(" ").UID("uid"),
			field:   "title",
		},
		"empty tag": {
			builder: base().Tags("cpu", ""),
			field:   "tags[1]",
		},
		"duplicate tag": {
			builder: base().Tags("cpu", "usage", "cpu"),
			field:   "tags[2]",
		},
		"tag not utf-8": {
			builder: base().Tags("cpu", "us\xe9"),
			field:   "tags[1]",
		},
		"title not utf-8": {
			builder: dashboard.NewBuilder("CPU \xff bad").UID("uid"),
			field:   "title",
		},
		"variable query not utf-8": {
			builder: base().WithVariable(dashboard.NewQueryVariable("region", "label_values(up, r\xffgion)", prom)),
			field:   "templating[0].query",
		},
		"variable label not utf-8": {
			builder: base().WithVariable(regionVariable().WithLabel("R\xe9gion")),
			field:   "templating[0].label",
		},
		"bad refresh": {
			builder: base().Refresh("often"),
			field:   "refresh",
		},
		"bad time from": {
			builder: base().Time("yesterday", "now"),
			field:   "time.from",
		},
		"bad time offset": {
			builder: base().Time("now-15x", "now"),
			field:   "time.from",
		},
		"bad time rounding": {
			builder: base().Time("now-1d/q", "now"),
			field:   "time.from",
		},
		"bad time to": {
			builder: base().Time("now-1h", "now*2"),
			field:   "time.to",
		},
		"duplicate variable": {
			builder: base().WithVariable(regionVariable()).WithVariable(regionVariable().WithLabel("Again")),
			field:   "templating[1].name",
		},
		"variable name with a dollar": {
			builder: base().WithVariable(dashboard.NewQueryVariable("$region", "label_values(up, region)", prom)),
			field:   "templating[0].name",
		},
		"variable without query": {
			builder: base().WithVariable(dashboard.NewQueryVariable("region", "", prom)),
			field:   "templating[0].query",
		},
		"variable with unknown sort": {
			builder: base().WithVariable(regionVariable().WithSort(dashboard.VariableSort(42))),
			field:   "templating[0].sort",
		},
		"invalid panel added as a literal": {
			builder: base().WithPanel(dashboard.Panel{Title: "Broken", GridPos: dashboard.NewGridPos(0, 0, 8, 8), Options: dashboard.DefaultStatOptions()}),
			field:   "panels[1].targets",
		},
		"panel literal with duplicate ref ids": {
			builder: base().WithPanel(dashboard.Panel{
				Title:   "Dup",
				GridPos: dashboard.NewGridPos(8, 0, 8, 8),
				Options: dashboard.DefaultStatOptions(),
				Targets: []dashboard.Target{dashboard.NewTarget(prom, "up").WithRefID("A"), dashboard.NewTarget(prom, "up").WithRefID("A")},
			}),
			field: "panels[1].targets[1].refId",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tc.builder.Build()
			requireValidationError(t, err, tc.field)
		})
	}
}

func TestBuilderAcceptsTimeExpressions(t *testing.T) {
	for _, tr := range []dashboard.TimeRange{
		{From: "now-15m", To: "now"},
		{From: "now-1d/d", To: "now/d"},
		{From: "now-7d", To: "now+1h"},
		{From: "2024-01-01T00:00:00Z", To: "2024-01-02T00:00:00Z"},
	} {
		_, err := dashboard.NewBuilder("Title").UID("uid").Time(tr.From, tr.To).Build()
		assert.NoError(t, err, tr)
	}
}

func TestBuilderBuildIsASnapshot(t *testing.T) {
	b := dashboard.NewBuilder("Title").UID("uid").Tags("a").
		WithPanel(mustGauge(t, "First", dashboard.NewGridPos(0, 0, 8, 8), "server1"))

	first, err := b.Build()
	require.NoError(t, err)

	b.WithPanel(mustGauge(t, "Second", dashboard.NewGridPos(8, 0, 8, 8), "server2")).
		WithVariable(regionVariable()).
		Tags("b")

	second, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, first.Panels, 1)
	assert.Empty(t, first.Variables)
	assert.Equal(t, []string{"a"}, first.Tags)
	assert.Len(t, second.Panels, 2)
	assert.Len(t, second.Variables, 1)

	// Mutating a built dashboard leaves the builder alone.
	second.Panels[0].Title = "Changed"
	second.Panels[0].Targets[0].Expr = "changed"
	third, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "First", third.Panels[0].Title)
	assert.Equal(t, dashboard.CPUInstanceQuery("server1"), third.Panels[0].Targets[0].Expr)
}

func TestVariablePolicyNames(t *testing.T) {
	assert.Equal(t, "on-time-range-change", dashboard.RefreshOnTimeRangeChange.String())
	assert.Equal(t, "on-dashboard-load", dashboard.RefreshOnDashboardLoad.String())
	assert.Equal(t, "alphabetical-asc", dashboard.SortAlphabeticalAsc.String())
	assert.Equal(t, "natural-desc", dashboard.SortNaturalDesc.String())
	assert.Equal(t, "unknown", dashboard.VariableSort(99).String())
}
