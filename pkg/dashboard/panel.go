// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"fmt"
	"strings"
)

// PanelKind is the visualization type of a panel.
type PanelKind uint8

const (
	KindGauge PanelKind = iota + 1
	KindTimeseries
	KindBarchart
	KindStateTimeline
	KindStat
)

// String returns the Grafana panel type.
func (k PanelKind) String() string {
	switch k {
	case KindGauge:
		return "gauge"
	case KindTimeseries:
		return "timeseries"
	case KindBarchart:
		return "barchart"
	case KindStateTimeline:
		return "state-timeline"
	case KindStat:
		return "stat"
	default:
		return "unknown"
	}
}

// PanelOptions holds the kind specific settings of a panel. The set of
// implementations is closed: GaugeOptions, TimeseriesOptions, BarchartOptions,
// StateTimelineOptions and StatOptions.
type PanelOptions interface {
	Kind() PanelKind

	validate() error
	cloneOptions() PanelOptions
}

// Panel is one visualization on a dashboard.
type Panel struct {
	Title       string
	Description string
	GridPos     GridPos
	Options     PanelOptions
	Targets     []Target
}

// NewPanel validates and returns a panel. Targets without a RefID get one
// assigned from their position.
func NewPanel(title string, pos GridPos, options PanelOptions, targets ...Target) (Panel, error) {
	p := Panel{
		Title:   title,
		GridPos: pos,
		Options: options,
		Targets: assignRefIDs(targets),
	}
	if err := p.validate(); err != nil {
		return Panel{}, err
	}
	return p.clone(), nil
}

// Kind returns the panel's visualization type.
func (p Panel) Kind() PanelKind {
	if p.Options == nil {
		return 0
	}
	return p.Options.Kind()
}

// WithDescription returns a copy of p with the given description.
func (p Panel) WithDescription(desc string) Panel {
	p = p.clone()
	p.Description = desc
	return p
}

// Datasource returns the data source of the panel's first target.
func (p Panel) Datasource() DataSourceRef {
	if len(p.Targets) == 0 {
		return DataSourceRef{}
	}
	return p.Targets[0].Datasource
}

func (p Panel) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if err := validateText("title", p.Title); err != nil {
		return err
	}
	if err := validateText("description", p.Description); err != nil {
		return err
	}
	if err := p.GridPos.validate(); err != nil {
		return err
	}
	if p.Options == nil {
		return invalid("options", "a panel kind is required")
	}
	if err := p.Options.validate(); err != nil {
		return prefixed("options", err)
	}
	return validateTargets(p.Targets)
}

func (p Panel) clone() Panel {
	out := p
	if p.Options != nil {
		out.Options = p.Options.cloneOptions()
	}
	out.Targets = append([]Target(nil), p.Targets...)
	return out
}

func validateMinMax(lo, hi *float64) error {
	if lo != nil && !isFinite(*lo) {
		return invalid("min", "%g is not a finite number", *lo)
	}
	if hi != nil && !isFinite(*hi) {
		return invalid("max", "%g is not a finite number", *hi)
	}
	if lo != nil && hi != nil && *lo > *hi {
		return invalid("max", "%g is lower than min %g", *hi, *lo)
	}
	return nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func describeKind(o PanelOptions) string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", o)
}
