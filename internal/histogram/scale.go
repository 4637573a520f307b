package histogram

import (
	"math"
	"strings"
)

// Scale selects the transform applied to bucket counts before they become
// bar heights.
type Scale string

const (
	ScaleLinear      Scale = "linear"
	ScaleLogarithmic Scale = "logarithmic"
	ScaleSqrt        Scale = "sqrt"
)

// Scales lists every supported scale in display order.
var Scales = []Scale{ScaleLinear, ScaleLogarithmic, ScaleSqrt}

// Description returns a one-line explanation of the scale.
func (s Scale) Description() string {
	switch s {
	case ScaleLogarithmic:
		return "log10(count+1), better for wide value ranges"
	case ScaleSqrt:
		return "square root of count, a middle ground"
	default:
		return "proportional to count"
	}
}

// ParseScale maps a config value to a Scale. Unknown names are linear.
func ParseScale(s string) Scale {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case ScaleLogarithmic, "log":
		return ScaleLogarithmic
	case ScaleSqrt:
		return ScaleSqrt
	default:
		return ScaleLinear
	}
}

// Height returns the bar height in [0,100] for count relative to maxCount.
// A zero count is always 0.
func (s Scale) Height(count, maxCount float64) float64 {
	if count == 0 || maxCount <= 0 {
		return 0
	}

	var h float64
	switch s {
	case ScaleLogarithmic:
		denom := math.Log10(maxCount + 1)
		if denom == 0 {
			return 0
		}
		h = math.Log10(count+1) / denom * 100
	case ScaleSqrt:
		h = math.Sqrt(count) / math.Sqrt(maxCount) * 100
	default:
		h = count / maxCount * 100
	}

	if math.IsNaN(h) {
		return 0
	}
	return h
}
