// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

import (
	"fmt"
	"math"
)

type ThresholdsMode uint8

const (
	ThresholdsModeAbsolute ThresholdsMode = iota
	ThresholdsModePercentage
)

func (m ThresholdsMode) String() string {
	switch m {
	case ThresholdsModeAbsolute:
		return "absolute"
	case ThresholdsModePercentage:
		return "percentage"
	default:
		return fmt.Sprintf("ThresholdsMode(%d)", uint8(m))
	}
}

// Threshold is a single breakpoint. A nil Value means "from the minimum upward"
// and is only allowed on the first step.
type Threshold struct {
	Value *float64
	Color string
}

// Step returns a threshold starting at v.
func Step(v float64, color string) Threshold {
	return Threshold{Value: &v, Color: color}
}

// BaseStep returns the unbounded-low threshold that starts a ThresholdsConfig.
func BaseStep(color string) Threshold {
	return Threshold{Color: color}
}

// ThresholdsConfig colors a panel's value depending on which step it falls in.
type ThresholdsConfig struct {
	Mode  ThresholdsMode
	Steps []Threshold
}

// NewThresholds validates and returns a ThresholdsConfig.
func NewThresholds(mode ThresholdsMode, steps ...Threshold) (ThresholdsConfig, error) {
	cfg := ThresholdsConfig{Mode: mode, Steps: steps}
	if err := cfg.validate(); err != nil {
		return ThresholdsConfig{}, err
	}
	return cfg.clone(), nil
}

func (t ThresholdsConfig) validate() error {
	if t.Mode != ThresholdsModeAbsolute && t.Mode != ThresholdsModePercentage {
		return invalid("thresholds.mode", "unknown mode %d", t.Mode)
	}
	if len(t.Steps) == 0 {
		return invalid("thresholds.steps", "at least one step is required")
	}

	var prev *float64
	for i, step := range t.Steps {
		field := fmt.Sprintf("thresholds.steps[%d]", i)
		if step.Color == "" {
			return invalid(field+".color", "must not be empty")
		}
		if err := validateText(field+".color", step.Color); err != nil {
			return err
		}
		if step.Value == nil {
			if i != 0 {
				return invalid(field+".value", "only the first step may be unbounded")
			}
			continue
		}
		if !isFinite(*step.Value) {
			return invalid(field+".value", "%g is not a finite number", *step.Value)
		}
		if prev != nil && *step.Value < *prev {
			return invalid(field+".value", "%g is lower than the previous step %g", *step.Value, *prev)
		}
		prev = step.Value
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (t ThresholdsConfig) clone() ThresholdsConfig {
	steps := make([]Threshold, 0, len(t.Steps))
	for _, s := range t.Steps {
		if s.Value != nil {
			v := *s.Value
			s.Value = &v
		}
		steps = append(steps, s)
	}
	return ThresholdsConfig{Mode: t.Mode, Steps: steps}
}
