// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"github.com/grafana/regexp"
)

var variableNameRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// VariableRefresh controls when Grafana re-runs a variable's query.
type VariableRefresh uint8

const (
	RefreshNever VariableRefresh = iota
	RefreshOnDashboardLoad
	RefreshOnTimeRangeChange
)

func (r VariableRefresh) String() string {
	switch r {
	case RefreshNever:
		return "never"
	case RefreshOnDashboardLoad:
		return "on-dashboard-load"
	case RefreshOnTimeRangeChange:
		return "on-time-range-change"
	default:
		return "unknown"
	}
}

// VariableSort controls the order of a variable's values in the drop-down.
// The numeric values are the ones Grafana stores.
type VariableSort uint8

const (
	SortDisabled VariableSort = iota
	SortAlphabeticalAsc
	SortAlphabeticalDesc
	SortNumericalAsc
	SortNumericalDesc
	SortAlphabeticalCaseInsensitiveAsc
	SortAlphabeticalCaseInsensitiveDesc
	SortNaturalAsc
	SortNaturalDesc
)

func (s VariableSort) String() string {
	switch s {
	case SortDisabled:
		return "disabled"
	case SortAlphabeticalAsc:
		return "alphabetical-asc"
	case SortAlphabeticalDesc:
		return "alphabetical-desc"
	case SortNumericalAsc:
		return "numerical-asc"
	case SortNumericalDesc:
		return "numerical-desc"
	case SortAlphabeticalCaseInsensitiveAsc:
		return "alphabetical-case-insensitive-asc"
	case SortAlphabeticalCaseInsensitiveDesc:
		return "alphabetical-case-insensitive-desc"
	case SortNaturalAsc:
		return "natural-asc"
	case SortNaturalDesc:
		return "natural-desc"
	default:
		return "unknown"
	}
}

// Variable is a query driven template variable. Panels reference it as $Name;
// the substitution happens in Grafana, never here.
type Variable struct {
	Name  string
	Label string
	// Query enumerates the variable's values, like "label_values(cpu_usage, region)".
	Query      string
	Datasource DataSourceRef
	Refresh    VariableRefresh
	Sort       VariableSort
	Multi      bool
	IncludeAll bool
}

// NewQueryVariable returns a variable refreshed on dashboard load with unsorted values.
func NewQueryVariable(name, query string, ds DataSourceRef) Variable {
	return Variable{
		Name:       name,
		Label:      name,
		Query:      query,
		Datasource: ds,
		Refresh:    RefreshOnDashboardLoad,
	}
}

func (v Variable) WithLabel(label string) Variable {
	v.Label = label
	return v
}

func (v Variable) WithRefresh(r VariableRefresh) Variable {
	v.Refresh = r
	return v
}

func (v Variable) WithSort(s VariableSort) Variable {
	v.Sort = s
	return v
}

// WithMulti returns a copy of v allowing several values, and an "All" option if includeAll is set.
func (v Variable) WithMulti(includeAll bool) Variable {
	v.Multi = true
	v.IncludeAll = includeAll
	return v
}

func (v Variable) validate() error {
	if !variableNameRegexp.MatchString(v.Name) {
		return invalid("name", "%q is not a valid variable name", v.Name)
	}
	if err := validateText("label", v.Label); err != nil {
		return err
	}
	if v.Query == "" {
		return invalid("query", "must not be empty")
	}
	if err := validateText("query", v.Query); err != nil {
		return err
	}
	if v.Refresh > RefreshOnTimeRangeChange {
		return invalid("refresh", "unknown policy %d", v.Refresh)
	}
	if v.Sort > SortNaturalDesc {
		return invalid("sort", "unknown policy %d", v.Sort)
	}
	return v.Datasource.validate()
}
