// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import "fmt"

// Target is a single query a panel fetches its data with.
type Target struct {
	// Expr is the data source specific query. It is never interpreted here, so
	// template variables such as $region are kept verbatim.
	Expr string
	// LegendFormat is an optional display template, like "{{instance}}".
	LegendFormat string
	// RefID identifies the target within its panel. Left empty, it is assigned
	// from the target's position: "A", "B", ...
	RefID      string
	Datasource DataSourceRef
}

// NewTarget returns a target querying ds with expr.
func NewTarget(ds DataSourceRef, expr string) Target {
	return Target{Expr: expr, Datasource: ds}
}

// WithLegend returns a copy of t with the given legend format.
func (t Target) WithLegend(format string) Target {
	t.LegendFormat = format
	return t
}

// WithRefID returns a copy of t with the given reference id.
func (t Target) WithRefID(refID string) Target {
	t.RefID = refID
	return t
}

func (t Target) validate() error {
	if t.Expr == "" {
		return invalid("expr", "must not be empty")
	}
	if err := validateText("expr", t.Expr); err != nil {
		return err
	}
	if err := validateText("legendFormat", t.LegendFormat); err != nil {
		return err
	}
	if t.RefID == "" {
		return invalid("refId", "must not be empty")
	}
	if err := validateText("refId", t.RefID); err != nil {
		return err
	}
	return t.Datasource.validate()
}

// RefIDForIndex returns the conventional reference id of the i-th target:
// A..Z, then AA, AB, ...
func RefIDForIndex(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return RefIDForIndex(i/26-1) + string(rune('A'+i%26))
}

func assignRefIDs(targets []Target) []Target {
	out := make([]Target, len(targets))
	for i, t := range targets {
		if t.RefID == "" {
			t.RefID = RefIDForIndex(i)
		}
		out[i] = t
	}
	return out
}

func validateTargets(targets []Target) error {
	if len(targets) == 0 {
		return invalid("targets", "at least one target is required")
	}
	seen := make(map[string]int, len(targets))
	for i, t := range targets {
		field := fmt.Sprintf("targets[%d]", i)
		if err := t.validate(); err != nil {
			return prefixed(field, err)
		}
		if j, ok := seen[t.RefID]; ok {
			return invalid(field+".refId", "%q is already used by targets[%d]", t.RefID, j)
		}
		seen[t.RefID] = i
	}
	return nil
}
