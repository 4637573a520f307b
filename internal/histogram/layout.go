package histogram

import (
	"math"

	"github.com/zjrosen/rangeslider/internal/bucket"
	"github.com/zjrosen/rangeslider/internal/rangemap"
)

// Opacity levels for bars inside and outside the selection.
const (
	OpacityActive = 1.0
	OpacityDimmed = 0.3
)

// Tooltip edge zones, as a fraction of the bar count.
const (
	leftEdgeZone  = 0.2
	rightEdgeZone = 0.8
	// tallBar is the height above which the tooltip moves below the bar top.
	tallBar = 80.0
)

// Valence classifies a bucket by the sign of its range.
type Valence int

const (
	ValencePositive Valence = iota
	ValenceNegative
	// ValenceMixed straddles zero. It lays out like a positive bucket.
	ValenceMixed
)

// String returns the valence name.
func (v Valence) String() string {
	switch v {
	case ValenceNegative:
		return "negative"
	case ValenceMixed:
		return "mixed"
	default:
		return "positive"
	}
}

// ValenceOf classifies b.
func ValenceOf(b bucket.Bucket) Valence {
	if b.Max <= 0 {
		return ValenceNegative
	}
	if b.Min >= 0 {
		return ValencePositive
	}
	return ValenceMixed
}

// ZeroBaseline returns where value 0 sits, as a percent from the bottom.
// It is 0 unless negative display is on and the domain reaches below zero.
func ZeroBaseline(showNegative bool, min, max float64) float64 {
	if !showNegative || min >= 0 {
		return 0
	}
	if max <= 0 {
		return 100
	}
	return math.Abs(min) / (max - min) * 100
}

// Opacity is OpacityActive when the bucket center lies within sel.
func Opacity(b bucket.Bucket, sel rangemap.Selection) float64 {
	c := b.Center()
	if c >= sel.Start && c <= sel.End {
		return OpacityActive
	}
	return OpacityDimmed
}

// Geometry positions a bar inside the container, in percent from the bottom.
type Geometry struct {
	Bottom   float64
	Height   float64
	Downward bool
}

// Place converts a scaled height into a Geometry. With negative display on,
// negative bars hang from the baseline into the space below it and all other
// bars rise from the baseline into the space above it.
func Place(height float64, v Valence, showNegative bool, baseline float64) Geometry {
	if !showNegative {
		return Geometry{Bottom: 0, Height: height}
	}
	if v == ValenceNegative {
		h := height / 100 * baseline
		return Geometry{Bottom: baseline - h, Height: h, Downward: true}
	}
	h := height / 100 * (100 - baseline)
	return Geometry{Bottom: baseline, Height: h}
}

// Align is the horizontal anchoring of a tooltip relative to its position.
type Align int

const (
	AlignCenter Align = iota
	// AlignLeft puts the tooltip's left edge at Left.
	AlignLeft
	// AlignRight puts the tooltip's right edge at Left.
	AlignRight
)

// TooltipPlacement positions a tooltip in percent of the container.
type TooltipPlacement struct {
	Left  float64
	Align Align
	Below bool
}

// PlaceTooltip positions the tooltip for the bar at index out of total so
// that it does not overflow the container edges.
func PlaceTooltip(index, total int, barHeight float64) TooltipPlacement {
	if total <= 0 {
		return TooltipPlacement{}
	}
	n := float64(total)
	i := float64(index)

	p := TooltipPlacement{
		Left:  (i + 0.5) / n * 100,
		Align: AlignCenter,
		Below: barHeight > tallBar,
	}
	switch {
	case i < n*leftEdgeZone:
		p.Left = i / n * 100
		p.Align = AlignLeft
	case i > n*rightEdgeZone:
		p.Left = (i + 1) / n * 100
		p.Align = AlignRight
	}
	return p
}

// Bar is the computed presentation of one bucket.
type Bar struct {
	Bucket   bucket.Bucket
	Height   float64
	Opacity  float64
	Valence  Valence
	Geometry Geometry
}

// Layout computes every bar for the given props.
func Layout(p Props) []Bar {
	maxCount := bucket.MaxCount(p.Buckets)
	baseline := ZeroBaseline(p.ShowNegative, p.Min, p.Max)

	bars := make([]Bar, len(p.Buckets))
	for i, b := range p.Buckets {
		h := p.Scale.Height(b.Count, maxCount)
		v := ValenceOf(b)
		bars[i] = Bar{
			Bucket:   b,
			Height:   h,
			Opacity:  Opacity(b, p.Selection),
			Valence:  v,
			Geometry: Place(h, v, p.ShowNegative, baseline),
		}
	}
	return bars
}
