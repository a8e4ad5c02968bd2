// SPDX-License-Identifier: AGPL-3.0-only

package minisdk

var knownTypes = map[string]struct{}{
	"graph":          {},
	"table":          {},
	"text":           {},
	"singlestat":     {},
	"stat":           {},
	"dashlist":       {},
	"bargauge":       {},
	"heatmap":        {},
	"timeseries":     {},
	"row":            {},
	"gauge":          {},
	"barchart":       {},
	"logs":           {},
	"news":           {},
	"alertlist":      {},
	"piechart":       {},
	"annolist":       {},
	"histogram":      {},
	"status-history": {},
	"state-timeline": {},
	"xychart":        {},
}

// Panels that never carry queries.
var targetlessTypes = map[string]struct{}{
	"text":      {},
	"dashlist":  {},
	"row":       {},
	"news":      {},
	"alertlist": {},
	"annolist":  {},
}

// Panel is a decoded dashboard panel.
type Panel struct {
	ID          int            `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	GridPos     GridPos        `json:"gridPos"`
	Datasource  *DatasourceRef `json:"datasource,omitempty"`
	Targets     []Target       `json:"targets,omitempty"`
	FieldConfig FieldConfig    `json:"fieldConfig"`
	// SubPanels are the panels of a collapsed row.
	SubPanels []Panel `json:"panels,omitempty"`
}

type GridPos struct {
	H int `json:"h"`
	W int `json:"w"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Target describes an expression with which the Panel fetches data from a data source.
type Target struct {
	Datasource   *DatasourceRef `json:"datasource,omitempty"`
	Expr         string         `json:"expr,omitempty"`
	LegendFormat string         `json:"legendFormat,omitempty"`
	RefID        string         `json:"refId"`
}

type FieldConfig struct {
	Defaults FieldDefaults `json:"defaults"`
}

type FieldDefaults struct {
	Min        *float64    `json:"min,omitempty"`
	Max        *float64    `json:"max,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

type Thresholds struct {
	Mode  string          `json:"mode"`
	Steps []ThresholdStep `json:"steps"`
}

type ThresholdStep struct {
	Color string   `json:"color"`
	Value *float64 `json:"value"`
}

func (p *Panel) hasCustomType() bool {
	_, ok := knownTypes[p.Type]
	return !ok
}

// SupportsTargets returns true if the Panel type supports targets.
// Panels of unknown plugin types are assumed to support them: it is better to
// look for targets that don't exist than to miss the ones that do.
func (p *Panel) SupportsTargets() bool {
	if p.hasCustomType() {
		return true
	}
	_, targetless := targetlessTypes[p.Type]
	return !targetless
}
