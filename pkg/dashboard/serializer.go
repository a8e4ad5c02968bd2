// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// SchemaVersion is the Grafana dashboard schema version of serialized documents.
const SchemaVersion = 39

// Serializer turns a Dashboard into Grafana dashboard JSON. Output only depends
// on the Dashboard: field order is fixed, panel ids follow panel order, and the
// document ends with a newline so that it diffs cleanly under version control.
type Serializer struct {
	api jsoniter.API
}

func NewSerializer() *Serializer {
	return &Serializer{
		api: jsoniter.Config{
			IndentionStep:          2,
			EscapeHTML:             false,
			SortMapKeys:            true,
			ValidateJsonRawMessage: true,
		}.Froze(),
	}
}

// Serialize returns the JSON document of d. It fails with a *SchemaError if d
// violates an invariant that Builder.Build would have rejected.
func (s *Serializer) Serialize(d Dashboard) ([]byte, error) {
	if err := d.validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, &SchemaError{Path: verr.Field, Reason: verr.Reason}
		}
		return nil, err
	}

	doc, err := toWire(d)
	if err != nil {
		return nil, err
	}

	out, err := s.api.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding dashboard %s", d.UID)
	}
	return append(out, '\n'), nil
}

type wireDashboard struct {
	UID           string          `json:"uid"`
	Title         string          `json:"title"`
	Tags          []string        `json:"tags"`
	Timezone      string          `json:"timezone"`
	Editable      bool            `json:"editable"`
	GraphTooltip  int             `json:"graphTooltip"`
	Time          wireTime        `json:"time"`
	Refresh       string          `json:"refresh"`
	SchemaVersion int             `json:"schemaVersion"`
	Templating    wireTemplating  `json:"templating"`
	Annotations   wireAnnotations `json:"annotations"`
	Panels        []wirePanel     `json:"panels"`
}

type wireTime struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type wireTemplating struct {
	List []wireVariable `json:"list"`
}

type wireAnnotations struct {
	List []struct{} `json:"list"`
}

type wireDatasource struct {
	Type string `json:"type"`
	UID  string `json:"uid"`
}

type wireVariable struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Datasource wireDatasource `json:"datasource"`
	Query      string         `json:"query"`
	Definition string         `json:"definition"`
	Regex      string         `json:"regex"`
	Refresh    int            `json:"refresh"`
	Sort       int            `json:"sort"`
	Multi      bool           `json:"multi"`
	IncludeAll bool           `json:"includeAll"`
	Hide       int            `json:"hide"`
	Current    struct{}       `json:"current"`
	Options    []struct{}     `json:"options"`
}

type wirePanel struct {
	ID          int             `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	GridPos     wireGridPos     `json:"gridPos"`
	Datasource  wireDatasource  `json:"datasource"`
	Targets     []wireTarget    `json:"targets"`
	FieldConfig wireFieldConfig `json:"fieldConfig"`
	Options     any             `json:"options"`
}

type wireGridPos struct {
	H int `json:"h"`
	W int `json:"w"`
	X int `json:"x"`
	Y int `json:"y"`
}

type wireTarget struct {
	Datasource   wireDatasource `json:"datasource"`
	Expr         string         `json:"expr"`
	LegendFormat string         `json:"legendFormat,omitempty"`
	RefID        string         `json:"refId"`
}

type wireFieldConfig struct {
	Defaults  wireFieldDefaults `json:"defaults"`
	Overrides []struct{}        `json:"overrides"`
}

type wireFieldDefaults struct {
	Min        *float64        `json:"min,omitempty"`
	Max        *float64        `json:"max,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Thresholds *wireThresholds `json:"thresholds,omitempty"`
	Custom     any             `json:"custom,omitempty"`
}

type wireThresholds struct {
	Mode  string          `json:"mode"`
	Steps []wireThreshold `json:"steps"`
}

// wireThreshold keeps Value without omitempty: the unbounded base step must be
// encoded as an explicit null.
type wireThreshold struct {
	Color string   `json:"color"`
	Value *float64 `json:"value"`
}

type wireReduceOptions struct {
	Calcs  []string `json:"calcs"`
	Fields string   `json:"fields"`
	Values bool     `json:"values"`
}

type wireLegend struct {
	Calcs       []string `json:"calcs"`
	DisplayMode string   `json:"displayMode"`
	Placement   string   `json:"placement"`
	ShowLegend  bool     `json:"showLegend"`
}

type wireTooltip struct {
	Mode string `json:"mode"`
	Sort string `json:"sort"`
}

type wireGaugeOptions struct {
	Orientation          string            `json:"orientation"`
	ReduceOptions        wireReduceOptions `json:"reduceOptions"`
	ShowThresholdLabels  bool              `json:"showThresholdLabels"`
	ShowThresholdMarkers bool              `json:"showThresholdMarkers"`
}

type wireTimeseriesCustom struct {
	DrawStyle   string `json:"drawStyle"`
	FillOpacity int    `json:"fillOpacity"`
	LineWidth   int    `json:"lineWidth"`
}

type wireTimeseriesOptions struct {
	Legend  wireLegend  `json:"legend"`
	Tooltip wireTooltip `json:"tooltip"`
}

type wireBarchartOptions struct {
	Legend      wireLegend  `json:"legend"`
	Orientation string      `json:"orientation"`
	ShowValue   string      `json:"showValue"`
	Tooltip     wireTooltip `json:"tooltip"`
}

type wireStateTimelineOptions struct {
	Legend      wireLegend  `json:"legend"`
	MergeValues bool        `json:"mergeValues"`
	RowHeight   float64     `json:"rowHeight"`
	ShowValue   string      `json:"showValue"`
	Tooltip     wireTooltip `json:"tooltip"`
}

type wireStatOptions struct {
	ColorMode     string            `json:"colorMode"`
	GraphMode     string            `json:"graphMode"`
	ReduceOptions wireReduceOptions `json:"reduceOptions"`
}

func toWire(d Dashboard) (wireDashboard, error) {
	doc := wireDashboard{
		UID:           d.UID,
		Title:         d.Title,
		Tags:          append([]string{}, d.Tags...),
		Timezone:      d.Timezone,
		Editable:      true,
		Time:          wireTime{From: d.Time.From, To: d.Time.To},
		Refresh:       d.Refresh,
		SchemaVersion: SchemaVersion,
		Templating:    wireTemplating{List: make([]wireVariable, 0, len(d.Variables))},
		Annotations:   wireAnnotations{List: []struct{}{}},
		Panels:        make([]wirePanel, 0, len(d.Panels)),
	}

	for _, v := range d.Variables {
		doc.Templating.List = append(doc.Templating.List, wireVariable{
			Type:       "query",
			Name:       v.Name,
			Label:      v.Label,
			Datasource: toWireDatasource(v.Datasource),
			Query:      v.Query,
			Definition: v.Query,
			Refresh:    int(v.Refresh),
			Sort:       int(v.Sort),
			Multi:      v.Multi,
			IncludeAll: v.IncludeAll,
			Options:    []struct{}{},
		})
	}

	for i, p := range d.Panels {
		wp, err := panelToWire(p)
		if err != nil {
			return wireDashboard{}, &SchemaError{Path: fmt.Sprintf("panels[%d].options", i), Reason: err.Error()}
		}
		wp.ID = i + 1
		doc.Panels = append(doc.Panels, wp)
	}
	return doc, nil
}

func panelToWire(p Panel) (wirePanel, error) {
	wp := wirePanel{
		Type:        p.Kind().String(),
		Title:       p.Title,
		Description: p.Description,
		GridPos:     wireGridPos{H: p.GridPos.H, W: p.GridPos.W, X: p.GridPos.X, Y: p.GridPos.Y},
		Datasource:  toWireDatasource(p.Datasource()),
		Targets:     make([]wireTarget, 0, len(p.Targets)),
		FieldConfig: wireFieldConfig{Overrides: []struct{}{}},
	}
	for _, t := range p.Targets {
		wp.Targets = append(wp.Targets, wireTarget{
			Datasource:   toWireDatasource(t.Datasource),
			Expr:         t.Expr,
			LegendFormat: t.LegendFormat,
			RefID:        t.RefID,
		})
	}

	defaults := &wp.FieldConfig.Defaults
	switch o := p.Options.(type) {
	case GaugeOptions:
		defaults.Min, defaults.Max = cloneFloat(o.Min), cloneFloat(o.Max)
		defaults.Unit = o.Unit
		defaults.Thresholds = toWireThresholds(o.Thresholds)
		wp.Options = wireGaugeOptions{
			Orientation:          "auto",
			ReduceOptions:        toWireReduce(o.Calcs),
			ShowThresholdLabels:  o.ShowThresholdLabels,
			ShowThresholdMarkers: o.ShowThresholdMarkers,
		}
	case TimeseriesOptions:
		defaults.Min, defaults.Max = cloneFloat(o.Min), cloneFloat(o.Max)
		defaults.Unit = o.Unit
		defaults.Custom = wireTimeseriesCustom{DrawStyle: "line", FillOpacity: o.FillOpacity, LineWidth: o.LineWidth}
		wp.Options = wireTimeseriesOptions{Legend: toWireLegend(o.Legend), Tooltip: defaultTooltip()}
	case BarchartOptions:
		defaults.Unit = o.Unit
		wp.Options = wireBarchartOptions{
			Legend:      toWireLegend(o.Legend),
			Orientation: string(o.Orientation),
			ShowValue:   string(o.ShowValue),
			Tooltip:     defaultTooltip(),
		}
	case StateTimelineOptions:
		wp.Options = wireStateTimelineOptions{
			Legend:      toWireLegend(o.Legend),
			MergeValues: o.MergeValues,
			RowHeight:   o.RowHeight,
			ShowValue:   string(o.ShowValue),
			Tooltip:     defaultTooltip(),
		}
	case StatOptions:
		defaults.Unit = o.Unit
		defaults.Thresholds = toWireThresholds(o.Thresholds)
		wp.Options = wireStatOptions{ColorMode: "value", GraphMode: o.GraphMode, ReduceOptions: toWireReduce(o.Calcs)}
	default:
		return wirePanel{}, fmt.Errorf("unsupported panel options %s", describeKind(p.Options))
	}
	return wp, nil
}

func toWireDatasource(ref DataSourceRef) wireDatasource {
	return wireDatasource{Type: ref.Type, UID: ref.UID}
}

func toWireThresholds(t ThresholdsConfig) *wireThresholds {
	out := &wireThresholds{Mode: t.Mode.String(), Steps: make([]wireThreshold, 0, len(t.Steps))}
	for _, s := range t.Steps {
		out.Steps = append(out.Steps, wireThreshold{Color: s.Color, Value: cloneFloat(s.Value)})
	}
	return out
}

func toWireReduce(calcs []string) wireReduceOptions {
	return wireReduceOptions{Calcs: append([]string{}, calcs...)}
}

func toWireLegend(l Legend) wireLegend {
	return wireLegend{
		Calcs:       []string{},
		DisplayMode: string(l.DisplayMode),
		Placement:   string(l.Placement),
		ShowLegend:  l.DisplayMode != LegendHidden,
	}
}

func defaultTooltip() wireTooltip {
	return wireTooltip{Mode: "single", Sort: "none"}
}
