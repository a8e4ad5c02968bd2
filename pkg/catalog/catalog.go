// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/grafana/dashgen/pkg/dashboard"
)

// DataSources are the data sources the shipped dashboards query.
type DataSources struct {
	Metrics dashboard.DataSourceRef
	Logs    dashboard.DataSourceRef
}

func DefaultDataSources() DataSources {
	return DataSources{
		Metrics: dashboard.DataSourceRef{Type: "prometheus", UID: "prometheus"},
		Logs:    dashboard.DataSourceRef{Type: "loki", UID: "Loki"},
	}
}

// Defaults are the dashboard wide settings shared by every definition.
type Defaults struct {
	Refresh string
	From    string
	To      string
}

func DefaultDefaults() Defaults {
	return Defaults{Refresh: "5s", From: "now-15m", To: "now"}
}

// Definition is a named dashboard and the file it is written to.
type Definition struct {
	Name     string
	FileName string
	Build    func(DataSources, Defaults) (dashboard.Dashboard, error)
}

var definitions = []Definition{
	{Name: "cpu-usage", FileName: "cpu_usage_dashboard.json", Build: CPUUsage},
	{Name: "cpu-usage-by-region", FileName: "cpu_usage_by_region_dashboard.json", Build: CPUUsageByRegion},
}

// All returns every shipped definition in generation order.
func All() []Definition {
	return append([]Definition(nil), definitions...)
}

func Names() []string {
	names := make([]string, 0, len(definitions))
	for _, d := range definitions {
		names = append(names, d.Name)
	}
	return names
}

// Select returns the definitions with the given names, in the given order.
// No names selects all of them.
func Select(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return All(), nil
	}

	selected := make([]Definition, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := seen[name]; ok {
			continue
		}
		def, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown dashboard %q, available: %s", name, strings.Join(Names(), ", "))
		}
		seen[name] = struct{}{}
		selected = append(selected, def)
	}
	return selected, nil
}

func lookup(name string) (Definition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// panelSet collects panels until the first construction error.
type panelSet struct {
	panels []dashboard.Panel
	err    error
}

func (s *panelSet) add(p dashboard.Panel, err error) {
	if s.err != nil {
		return
	}
	if err != nil {
		s.err = errors.Wrapf(err, "panels[%d]", len(s.panels))
		return
	}
	s.panels = append(s.panels, p)
}

func (s *panelSet) addTo(b *dashboard.Builder) error {
	if s.err != nil {
		return s.err
	}
	for _, p := range s.panels {
		b.WithPanel(p)
	}
	return nil
}

func newBuilder(title, uid string, defaults Defaults, tags ...string) *dashboard.Builder {
	return dashboard.NewBuilder(title).
		UID(uid).
		Tags(tags...).
		Refresh(defaults.Refresh).
		Time(defaults.From, defaults.To)
}

var cpuInstances = []string{"server1", "server2", "server3"}

// CPUUsage is the overview of the CPU usage of every server, with a log
// volume timeline below it.
func CPUUsage(ds DataSources, defaults Defaults) (dashboard.Dashboard, error) {
	b := newBuilder("CPU Usage Dashboard", "cpu-usage", defaults, "cpu", "demo")

	var set panelSet
	row := dashboard.NewRow(0)
	for _, instance := range cpuInstances {
		set.add(dashboard.CPUGauge(fmt.Sprintf("CPU Usage (%s)", instance), row.Next(8, 8), instance, ds.Metrics))
	}
	set.add(dashboard.TimeseriesWithQuery(
		"CPU Usage Over Time (All Servers)",
		dashboard.NewGridPos(0, 8, 24, 8),
		"avg(cpu_usage) by (instance)",
		"{{instance}}",
		ds.Metrics,
	))
	set.add(dashboard.BarchartWithQuery(
		"CPU Usage by Instance",
		dashboard.NewGridPos(0, 16, 24, 8),
		"avg(cpu_usage) by (instance)",
		"{{instance}}",
		ds.Metrics,
	))
	set.add(dashboard.StateTimelineWithQuery(
		"Log Count Over Time by Level and Instance",
		dashboard.NewGridPos(0, 24, 24, 8),
		`count_over_time({service_name="backend"}[1m])`,
		"{{instance}} - {{detected_level}}",
		ds.Logs,
	))

	if err := set.addTo(b); err != nil {
		return dashboard.Dashboard{}, err
	}
	return b.Build()
}

// CPUUsageByRegion is CPUUsage filtered by the $region template variable.
func CPUUsageByRegion(ds DataSources, defaults Defaults) (dashboard.Dashboard, error) {
	b := newBuilder("CPU Usage by Region Dashboard", "cpu-usage-by-region", defaults, "cpu", "demo", "region")
	b.WithVariable(dashboard.NewQueryVariable("region", "label_values(cpu_usage, region)", ds.Metrics).
		WithLabel("Region").
		WithRefresh(dashboard.RefreshOnTimeRangeChange).
		WithSort(dashboard.SortAlphabeticalAsc))

	var set panelSet
	row := dashboard.NewRow(0)
	for _, instance := range cpuInstances {
		set.add(dashboard.GaugeWithQuery(
			fmt.Sprintf("CPU Usage (%s - ${region})", instance),
			row.Next(8, 8),
			fmt.Sprintf(`cpu_usage{instance=%q, region="$region"}`, instance),
			ds.Metrics,
		))
	}
	set.add(dashboard.TimeseriesWithQuery(
		"CPU Usage Over Time (${region})",
		dashboard.NewGridPos(0, 8, 24, 8),
		`cpu_usage{region="$region"}`,
		"{{instance}}",
		ds.Metrics,
	))
	set.add(dashboard.BarchartWithQuery(
		"CPU Usage by Instance (${region})",
		dashboard.NewGridPos(0, 16, 24, 8),
		`cpu_usage{region="$region"}`,
		"{{instance}}",
		ds.Metrics,
	))

	if err := set.addTo(b); err != nil {
		return dashboard.Dashboard{}, err
	}
	return b.Build()
}
