// Package rangemap maps values in a bounded numeric domain to display
// percentages and back, with step quantization and handle crossover clamps.
package rangemap

import "math"

// Domain is the bounded axis a slider operates on.
type Domain struct {
	Min  float64
	Max  float64
	Step float64
}

// Selection is a committed [Start, End] sub-range of a Domain.
type Selection struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span returns Max - Min.
func (d Domain) Span() float64 {
	return d.Max - d.Min
}

// ValueToPercent maps v to [0,100] relative to the domain.
// A zero-width domain (or any non-finite result) maps to 0.
func (d Domain) ValueToPercent(v float64) float64 {
	span := d.Span()
	if span == 0 {
		return 0
	}
	p := (v - d.Min) / span * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// PercentToValue maps a percent back into the domain and rounds it to the
// nearest Step multiple. The result is not clamped; callers clamp.
// A step that is zero, negative or non-finite disables quantization.
func (d Domain) PercentToValue(percent float64) float64 {
	raw := d.Min + percent/100*d.Span()
	if !d.quantizes() {
		return raw
	}
	return math.Round(raw/d.Step) * d.Step
}

// Clamp limits v to [Min, Max].
func (d Domain) Clamp(v float64) float64 {
	return math.Max(d.Min, math.Min(d.Max, v))
}

// ClampSelection clamps both ends of s into the domain and orders them, so
// the result always satisfies Min <= Start <= End <= Max.
func (d Domain) ClampSelection(s Selection) Selection {
	start, end := d.Clamp(s.Start), d.Clamp(s.End)
	if start > end {
		start, end = end, start
	}
	return Selection{Start: start, End: end}
}

// DragStart returns the committed start for a start-handle candidate:
// at most one step below end, and never below Min.
func (d Domain) DragStart(candidate, end float64) float64 {
	return math.Max(d.Min, math.Min(candidate, end-d.gap()))
}

// DragEnd returns the committed end for an end-handle candidate:
// at least one step above start, and never above Max.
func (d Domain) DragEnd(candidate, start float64) float64 {
	return math.Min(d.Max, math.Max(candidate, start+d.gap()))
}

// gap is the minimum distance the handles keep between each other.
func (d Domain) gap() float64 {
	if !d.quantizes() {
		return 0
	}
	return d.Step
}

func (d Domain) quantizes() bool {
	return d.Step > 0 && !math.IsInf(d.Step, 0) && !math.IsNaN(d.Step)
}

// PercentFromOffset converts a pointer offset inside a track of the given
// width into a percent clamped to [0,100].
func PercentFromOffset(offset, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, offset/width*100))
}
