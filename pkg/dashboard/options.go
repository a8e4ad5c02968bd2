// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import "fmt"

type LegendDisplayMode string

const (
	LegendList   LegendDisplayMode = "list"
	LegendTable  LegendDisplayMode = "table"
	LegendHidden LegendDisplayMode = "hidden"
)

type LegendPlacement string

const (
	LegendBottom LegendPlacement = "bottom"
	LegendRight  LegendPlacement = "right"
)

// Legend configures the series legend of time based panels.
type Legend struct {
	DisplayMode LegendDisplayMode
	Placement   LegendPlacement
}

// DefaultLegend is a list legend below the graph.
func DefaultLegend() Legend {
	return Legend{DisplayMode: LegendList, Placement: LegendBottom}
}

func (l Legend) validate() error {
	switch l.DisplayMode {
	case LegendList, LegendTable, LegendHidden:
	default:
		return invalid("legend.displayMode", "unknown mode %q", l.DisplayMode)
	}
	switch l.Placement {
	case LegendBottom, LegendRight:
	default:
		return invalid("legend.placement", "unknown placement %q", l.Placement)
	}
	return nil
}

// GaugeOptions configures a gauge panel.
type GaugeOptions struct {
	Min, Max             *float64
	Unit                 string
	Thresholds           ThresholdsConfig
	ShowThresholdMarkers bool
	ShowThresholdLabels  bool
	// Calcs reduces each series to the displayed value, like "lastNotNull".
	Calcs []string
}

func (GaugeOptions) Kind() PanelKind { return KindGauge }

// WithThresholds returns a copy of o using t.
func (o GaugeOptions) WithThresholds(t ThresholdsConfig) GaugeOptions {
	o.Thresholds = t.clone()
	return o
}

// WithMinMax returns a copy of o bounded to [lo, hi].
func (o GaugeOptions) WithMinMax(lo, hi float64) GaugeOptions {
	o.Min, o.Max = &lo, &hi
	return o
}

// WithUnit returns a copy of o displaying values in unit.
func (o GaugeOptions) WithUnit(unit string) GaugeOptions {
	o.Unit = unit
	return o
}

func (o GaugeOptions) validate() error {
	if err := validateMinMax(o.Min, o.Max); err != nil {
		return err
	}
	if err := validateText("unit", o.Unit); err != nil {
		return err
	}
	if err := validateCalcs(o.Calcs); err != nil {
		return err
	}
	return o.Thresholds.validate()
}

func (o GaugeOptions) cloneOptions() PanelOptions {
	o.Min, o.Max = cloneFloat(o.Min), cloneFloat(o.Max)
	o.Thresholds = o.Thresholds.clone()
	o.Calcs = append([]string(nil), o.Calcs...)
	return o
}

// TimeseriesOptions configures a time series panel.
type TimeseriesOptions struct {
	Min, Max    *float64
	Unit        string
	Legend      Legend
	LineWidth   int
	FillOpacity int
}

func (TimeseriesOptions) Kind() PanelKind { return KindTimeseries }

// WithMinMax returns a copy of o with the y axis bounded to [lo, hi].
func (o TimeseriesOptions) WithMinMax(lo, hi float64) TimeseriesOptions {
	o.Min, o.Max = &lo, &hi
	return o
}

// WithUnit returns a copy of o displaying values in unit.
func (o TimeseriesOptions) WithUnit(unit string) TimeseriesOptions {
	o.Unit = unit
	return o
}

func (o TimeseriesOptions) validate() error {
	if err := validateMinMax(o.Min, o.Max); err != nil {
		return err
	}
	if err := validateText("unit", o.Unit); err != nil {
		return err
	}
	if o.LineWidth < 0 || o.LineWidth > 10 {
		return invalid("lineWidth", "%d is outside [0, 10]", o.LineWidth)
	}
	if o.FillOpacity < 0 || o.FillOpacity > 100 {
		return invalid("fillOpacity", "%d is outside [0, 100]", o.FillOpacity)
	}
	return o.Legend.validate()
}

func (o TimeseriesOptions) cloneOptions() PanelOptions {
	o.Min, o.Max = cloneFloat(o.Min), cloneFloat(o.Max)
	return o
}

type BarchartOrientation string

const (
	OrientationAuto       BarchartOrientation = "auto"
	OrientationHorizontal BarchartOrientation = "horizontal"
	OrientationVertical   BarchartOrientation = "vertical"
)

type ShowValue string

const (
	ShowValueAuto   ShowValue = "auto"
	ShowValueAlways ShowValue = "always"
	ShowValueNever  ShowValue = "never"
)

func (v ShowValue) validate() error {
	switch v {
	case ShowValueAuto, ShowValueAlways, ShowValueNever:
		return nil
	default:
		return invalid("showValue", "unknown value %q", v)
	}
}

// BarchartOptions configures a bar chart panel.
type BarchartOptions struct {
	Unit        string
	Orientation BarchartOrientation
	ShowValue   ShowValue
	Legend      Legend
}

func (BarchartOptions) Kind() PanelKind { return KindBarchart }

func (o BarchartOptions) validate() error {
	if err := validateText("unit", o.Unit); err != nil {
		return err
	}
	switch o.Orientation {
	case OrientationAuto, OrientationHorizontal, OrientationVertical:
	default:
		return invalid("orientation", "unknown orientation %q", o.Orientation)
	}
	if err := o.ShowValue.validate(); err != nil {
		return err
	}
	return o.Legend.validate()
}

func (o BarchartOptions) cloneOptions() PanelOptions { return o }

// StateTimelineOptions configures a state timeline panel.
type StateTimelineOptions struct {
	MergeValues bool
	ShowValue   ShowValue
	// RowHeight is the fraction of each row's height filled by its bar.
	RowHeight float64
	Legend    Legend
}

func (StateTimelineOptions) Kind() PanelKind { return KindStateTimeline }

func (o StateTimelineOptions) validate() error {
	if !(o.RowHeight > 0 && o.RowHeight <= 1) {
		return invalid("rowHeight", "%g is outside (0, 1]", o.RowHeight)
	}
	if err := o.ShowValue.validate(); err != nil {
		return err
	}
	return o.Legend.validate()
}

func (o StateTimelineOptions) cloneOptions() PanelOptions { return o }

// StatOptions configures a single stat panel.
type StatOptions struct {
	Unit       string
	Thresholds ThresholdsConfig
	Calcs      []string
	// GraphMode is "area" to draw a sparkline or "none".
	GraphMode string
}

func (StatOptions) Kind() PanelKind { return KindStat }

// WithThresholds returns a copy of o using t.
func (o StatOptions) WithThresholds(t ThresholdsConfig) StatOptions {
	o.Thresholds = t.clone()
	return o
}

func (o StatOptions) validate() error {
	if o.GraphMode != "area" && o.GraphMode != "none" {
		return invalid("graphMode", "unknown mode %q", o.GraphMode)
	}
	if err := validateText("unit", o.Unit); err != nil {
		return err
	}
	if err := validateCalcs(o.Calcs); err != nil {
		return err
	}
	return o.Thresholds.validate()
}

func validateCalcs(calcs []string) error {
	if len(calcs) == 0 {
		return invalid("calcs", "at least one reducer is required")
	}
	for i, c := range calcs {
		if err := validateText(fmt.Sprintf("calcs[%d]", i), c); err != nil {
			return err
		}
	}
	return nil
}

func (o StatOptions) cloneOptions() PanelOptions {
	o.Thresholds = o.Thresholds.clone()
	o.Calcs = append([]string(nil), o.Calcs...)
	return o
}
