// SPDX-License-Identifier: AGPL-3.0-only

package minisdk

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Board is a decoded dashboard.
type Board struct {
	UID           string     `json:"uid"`
	Title         string     `json:"title"`
	Tags          []string   `json:"tags"`
	Refresh       string     `json:"refresh"`
	SchemaVersion int        `json:"schemaVersion"`
	Time          Time       `json:"time"`
	Templating    Templating `json:"templating"`
	Panels        []*Panel   `json:"panels"`
}

type Time struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Templating struct {
	List []TemplateVar `json:"list"`
}

// TemplateVar is a dashboard variable. Query is either a string or, for
// variables created in the Grafana UI, an object with a "query" field.
type TemplateVar struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Datasource *DatasourceRef `json:"datasource,omitempty"`
	Query      interface{}    `json:"query"`
	Refresh    int            `json:"refresh"`
	Sort       int            `json:"sort"`
	Multi      bool           `json:"multi"`
	IncludeAll bool           `json:"includeAll"`
}

// QueryString returns the variable's query whichever way it was encoded.
func (v TemplateVar) QueryString() (string, error) {
	if query, ok := v.Query.(string); ok {
		return query, nil
	}
	if queryObj, ok := v.Query.(map[string]interface{}); ok {
		if query, ok := queryObj["query"].(string); ok {
			return query, nil
		}
	}
	return "", errors.Errorf("templating type error: name=%v", v.Name)
}

// DatasourceRef references a data source. Dashboards older than Grafana 8.4.3
// reference data sources by name, encoded as a plain string.
type DatasourceRef struct {
	Type       string `json:"type"`
	UID        string `json:"uid"`
	LegacyName string `json:"-"`
}

func (ref *DatasourceRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*ref = DatasourceRef{LegacyName: name}
		return nil
	}

	type plain DatasourceRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*ref = DatasourceRef(p)
	return nil
}

// Unmarshal decodes a dashboard document.
func Unmarshal(data []byte) (Board, error) {
	var board Board
	if err := json.Unmarshal(data, &board); err != nil {
		return Board{}, errors.Wrap(err, "decoding dashboard")
	}
	return board, nil
}

// PanelTitles returns the titles of all panels, including the ones nested in rows.
func (b Board) PanelTitles() []string {
	var titles []string
	for _, p := range b.Panels {
		titles = append(titles, p.Title)
		for _, sub := range p.SubPanels {
			titles = append(titles, sub.Title)
		}
	}
	return titles
}
