// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/grafana/regexp"
	"github.com/prometheus/common/model"
)

const maxUIDLength = 40

var uidRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// TimeRange is the default time window of a dashboard. Each end is either
// relative to now ("now", "now-15m", "now-1d/d") or an RFC3339 timestamp.
type TimeRange struct {
	From string
	To   string
}

func (r TimeRange) validate() error {
	if err := validateTimeExpr(r.From); err != nil {
		return prefixed("time.from", err)
	}
	if err := validateTimeExpr(r.To); err != nil {
		return prefixed("time.to", err)
	}
	return nil
}

func validateTimeExpr(expr string) error {
	if !strings.HasPrefix(expr, "now") {
		if _, err := time.Parse(time.RFC3339, expr); err != nil {
			return invalid("", "%q is neither relative to now nor an RFC3339 time", expr)
		}
		return nil
	}

	rest := strings.TrimPrefix(expr, "now")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		switch rest[i+1:] {
		case "s", "m", "h", "d", "w", "M", "y", "fy":
		default:
			return invalid("", "%q rounds to an unknown unit", expr)
		}
		rest = rest[:i]
	}
	if rest == "" {
		return nil
	}
	if rest[0] != '-' && rest[0] != '+' {
		return invalid("", "%q must be offset with - or +", expr)
	}
	if _, err := model.ParseDuration(rest[1:]); err != nil {
		return invalid("", "%q has an invalid offset: %v", expr, err)
	}
	return nil
}

// Dashboard is a finalized dashboard. Values returned by Builder.Build do not
// share memory with the builder.
type Dashboard struct {
	UID      string
	Title    string
	Tags     []string
	Refresh  string
	Time     TimeRange
	Timezone string

	Variables []Variable
	Panels    []Panel
}

func (d Dashboard) validate() error {
	if d.UID == "" {
		return invalid("uid", "must not be empty")
	}
	if len(d.UID) > maxUIDLength {
		return invalid("uid", "%q is longer than %d characters", d.UID, maxUIDLength)
	}
	if !uidRegexp.MatchString(d.UID) {
		return invalid("uid", "%q may only contain letters, digits, '-' and '_'", d.UID)
	}
	if strings.TrimSpace(d.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if err := validateText("title", d.Title); err != nil {
		return err
	}
	tags := make(map[string]int, len(d.Tags))
	for i, tag := range d.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		if tag == "" {
			return invalid(field, "must not be empty")
		}
		if err := validateText(field, tag); err != nil {
			return err
		}
		if j, ok := tags[tag]; ok {
			return invalid(field, "%q is already used by tags[%d]", tag, j)
		}
		tags[tag] = i
	}
	if err := validateText("timezone", d.Timezone); err != nil {
		return err
	}
	if d.Refresh != "" {
		if dur, err := model.ParseDuration(d.Refresh); err != nil || dur <= 0 {
			return invalid("refresh", "%q is not a positive duration", d.Refresh)
		}
	}
	if err := d.Time.validate(); err != nil {
		return err
	}

	names := make(map[string]int, len(d.Variables))
	for i, v := range d.Variables {
		field := fmt.Sprintf("templating[%d]", i)
		if err := v.validate(); err != nil {
			return prefixed(field, err)
		}
		if j, ok := names[v.Name]; ok {
			return invalid(field+".name", "%q is already used by templating[%d]", v.Name, j)
		}
		names[v.Name] = i
	}

	for i, p := range d.Panels {
		if err := p.validate(); err != nil {
			return prefixed(fmt.Sprintf("panels[%d]", i), err)
		}
	}
	return nil
}

func (d Dashboard) clone() Dashboard {
	out := d
	out.Tags = append([]string(nil), d.Tags...)
	out.Variables = append([]Variable(nil), d.Variables...)
	out.Panels = make([]Panel, 0, len(d.Panels))
	for _, p := range d.Panels {
		out.Panels = append(out.Panels, p.clone())
	}
	return out
}

// Builder accumulates the parts of a dashboard. A Builder must not be shared
// between goroutines.
type Builder struct {
	d Dashboard
}

// NewBuilder starts a dashboard titled title, showing the last 6 hours in the
// browser's timezone.
func NewBuilder(title string) *Builder {
	return &Builder{d: Dashboard{
		Title:    title,
		Time:     TimeRange{From: "now-6h", To: "now"},
		Timezone: "browser",
	}}
}

func (b *Builder) UID(uid string) *Builder {
	b.d.UID = uid
	return b
}

// Tags replaces the dashboard tags. Each tag may appear once.
func (b *Builder) Tags(tags ...string) *Builder {
	b.d.Tags = append([]string(nil), tags...)
	return b
}

// Refresh sets the auto refresh interval, like "5s". Empty disables it.
func (b *Builder) Refresh(interval string) *Builder {
	b.d.Refresh = interval
	return b
}

func (b *Builder) Time(from, to string) *Builder {
	b.d.Time = TimeRange{From: from, To: to}
	return b
}

func (b *Builder) Timezone(tz string) *Builder {
	b.d.Timezone = tz
	return b
}

// WithPanel appends p to the dashboard's panels.
func (b *Builder) WithPanel(p Panel) *Builder {
	b.d.Panels = append(b.d.Panels, p.clone())
	return b
}

// WithVariable appends v to the dashboard's template variables.
func (b *Builder) WithVariable(v Variable) *Builder {
	b.d.Variables = append(b.d.Variables, v)
	return b
}

// Build validates the accumulated dashboard and returns a snapshot of it.
// The builder can keep being used afterwards.
func (b *Builder) Build() (Dashboard, error) {
	if err := b.d.validate(); err != nil {
		return Dashboard{}, err
	}
	return b.d.clone(), nil
}
