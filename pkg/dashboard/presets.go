// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import "fmt"

// StandardCPUGaugeThresholds is the preset used by CPU gauges: green below 80%,
// yellow from 80%, red from 90%.
func StandardCPUGaugeThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		Mode: ThresholdsModePercentage,
		Steps: []Threshold{
			BaseStep("green"),
			Step(80, "yellow"),
			Step(90, "red"),
		},
	}
}

// DefaultThresholds is Grafana's default for new panels: green, red from 80.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		Mode:  ThresholdsModeAbsolute,
		Steps: []Threshold{BaseStep("green"), Step(80, "red")},
	}
}

// DefaultGaugeOptions is a 0-100 gauge with the standard CPU thresholds.
func DefaultGaugeOptions() GaugeOptions {
	return GaugeOptions{
		Thresholds:           StandardCPUGaugeThresholds(),
		ShowThresholdMarkers: true,
		Calcs:                []string{"lastNotNull"},
	}.WithMinMax(0, 100)
}

// DefaultTimeseriesOptions is a 0-100 time series with a list legend.
func DefaultTimeseriesOptions() TimeseriesOptions {
	return TimeseriesOptions{
		Legend:    DefaultLegend(),
		LineWidth: 1,
	}.WithMinMax(0, 100)
}

func DefaultBarchartOptions() BarchartOptions {
	return BarchartOptions{
		Orientation: OrientationAuto,
		ShowValue:   ShowValueAuto,
		Legend:      DefaultLegend(),
	}
}

func DefaultStateTimelineOptions() StateTimelineOptions {
	return StateTimelineOptions{
		MergeValues: true,
		ShowValue:   ShowValueAuto,
		RowHeight:   0.9,
		Legend:      DefaultLegend(),
	}
}

func DefaultStatOptions() StatOptions {
	return StatOptions{
		Thresholds: DefaultThresholds(),
		Calcs:      []string{"lastNotNull"},
		GraphMode:  "area",
	}
}

func NewGauge(title string, pos GridPos, opts GaugeOptions, targets ...Target) (Panel, error) {
	return NewPanel(title, pos, opts, targets...)
}

func NewTimeseries(title string, pos GridPos, opts TimeseriesOptions, targets ...Target) (Panel, error) {
	return NewPanel(title, pos, opts, targets...)
}

func NewBarchart(title string, pos GridPos, opts BarchartOptions, targets ...Target) (Panel, error) {
	return NewPanel(title, pos, opts, targets...)
}

func NewStateTimeline(title string, pos GridPos, opts StateTimelineOptions, targets ...Target) (Panel, error) {
	return NewPanel(title, pos, opts, targets...)
}

func NewStat(title string, pos GridPos, opts StatOptions, targets ...Target) (Panel, error) {
	return NewPanel(title, pos, opts, targets...)
}

// CPUInstanceQuery is the query CPUGauge runs for a single instance.
func CPUInstanceQuery(instance string) string {
	return fmt.Sprintf(`avg(cpu_usage{instance=%q}) by (instance)`, instance)
}

// CPUGauge returns a default gauge showing the average CPU usage of instance.
func CPUGauge(title string, pos GridPos, instance string, ds DataSourceRef) (Panel, error) {
	if instance == "" {
		return Panel{}, invalid("instance", "must not be empty")
	}
	return GaugeWithQuery(title, pos, CPUInstanceQuery(instance), ds)
}

// GaugeWithQuery returns a default gauge running expr.
func GaugeWithQuery(title string, pos GridPos, expr string, ds DataSourceRef) (Panel, error) {
	return NewGauge(title, pos, DefaultGaugeOptions(), NewTarget(ds, expr).WithRefID("A"))
}

// TimeseriesWithQuery returns a default time series running expr.
func TimeseriesWithQuery(title string, pos GridPos, expr, legendFormat string, ds DataSourceRef) (Panel, error) {
	return NewTimeseries(title, pos, DefaultTimeseriesOptions(), NewTarget(ds, expr).WithLegend(legendFormat).WithRefID("A"))
}

// BarchartWithQuery returns a default bar chart running expr.
func BarchartWithQuery(title string, pos GridPos, expr, legendFormat string, ds DataSourceRef) (Panel, error) {
	return NewBarchart(title, pos, DefaultBarchartOptions(), NewTarget(ds, expr).WithLegend(legendFormat).WithRefID("A"))
}

// StateTimelineWithQuery returns a default state timeline running expr.
func StateTimelineWithQuery(title string, pos GridPos, expr, legendFormat string, ds DataSourceRef) (Panel, error) {
	return NewStateTimeline(title, pos, DefaultStateTimelineOptions(), NewTarget(ds, expr).WithLegend(legendFormat).WithRefID("A"))
}
