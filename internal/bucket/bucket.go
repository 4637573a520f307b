// Package bucket normalizes histogram distribution input into an ordered
// sequence of buckets.
//
// Distribution data reaches the component in one of several shapes depending
// on where the host got it from (a query result, a literal array, a config
// file). Detect classifies the raw value and Normalize converts every
// recognized shape into []Bucket. Unrecognized input yields an empty slice;
// nothing in this package returns an error.
package bucket

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field names shared by every input shape.
const (
	FieldIndex = "bucket_index"
	FieldMin   = "bucket_min"
	FieldMax   = "bucket_max"
	FieldCount = "count"
)

// Unindexed marks a bucket whose index could not be coerced to a
// non-negative integer. Such a bucket renders but cannot anchor a selection.
const Unindexed = -1

// Bucket is one histogram bin.
type Bucket struct {
	Index int     `json:"bucket_index"`
	Min   float64 `json:"bucket_min"`
	Max   float64 `json:"bucket_max"`
	Count float64 `json:"count"`
}

// Center returns the midpoint of the bucket range.
func (b Bucket) Center() float64 {
	return (b.Min + b.Max) / 2
}

// Shape identifies which input layout a raw value uses.
type Shape int

const (
	// ShapeEmpty is absent input or an empty array.
	ShapeEmpty Shape = iota
	// ShapeColumnar is a single object whose four fields are parallel arrays.
	ShapeColumnar
	// ShapeWrappedColumnar is an array whose first element is a columnar object.
	ShapeWrappedColumnar
	// ShapeRows is an array of bucket-shaped objects.
	ShapeRows
	// ShapeUnrecognized is anything else.
	ShapeUnrecognized
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeColumnar:
		return "columnar"
	case ShapeWrappedColumnar:
		return "wrapped-columnar"
	case ShapeRows:
		return "rows"
	default:
		return "unrecognized"
	}
}

// Detect classifies raw. The checks run in a fixed order so that ambiguous
// input always resolves the same way: empty, object, empty array, first
// element type, wrapped columnar, rows.
func Detect(raw any) Shape {
	switch v := raw.(type) {
	case nil:
		return ShapeEmpty
	case []Bucket:
		if len(v) == 0 {
			return ShapeEmpty
		}
		return ShapeRows
	case map[string]any:
		return ShapeColumnar
	case []any:
		if len(v) == 0 {
			return ShapeEmpty
		}
		first, ok := v[0].(map[string]any)
		if !ok || first == nil {
			return ShapeUnrecognized
		}
		if _, isArray := first[FieldIndex].([]any); isArray {
			return ShapeWrappedColumnar
		}
		if hasFields(first, FieldMin, FieldMax, FieldCount) {
			return ShapeRows
		}
		return ShapeUnrecognized
	default:
		return ShapeUnrecognized
	}
}

// Normalize converts raw into buckets according to Detect. The returned
// slice is never nil.
func Normalize(raw any) []Bucket {
	switch Detect(raw) {
	case ShapeColumnar:
		return fromColumns(raw.(map[string]any))
	case ShapeWrappedColumnar:
		first := raw.([]any)[0].(map[string]any)
		return fromColumns(first)
	case ShapeRows:
		return fromRows(raw)
	default:
		return []Bucket{}
	}
}

// NormalizeJSON decodes a JSON document and normalizes it. Invalid JSON is
// treated as unrecognized input.
func NormalizeJSON(data []byte) []Bucket {
	if !gjson.ValidBytes(data) {
		return []Bucket{}
	}
	return Normalize(gjson.ParseBytes(data).Value())
}

// MaxCount returns the largest count, never less than 1.
func MaxCount(buckets []Bucket) float64 {
	maxCount := 1.0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

func fromColumns(obj map[string]any) []Bucket {
	index, okIndex := obj[FieldIndex].([]any)
	mins, okMin := obj[FieldMin].([]any)
	maxs, okMax := obj[FieldMax].([]any)
	counts, okCount := obj[FieldCount].([]any)
	if !okIndex || !okMin || !okMax || !okCount {
		return []Bucket{}
	}

	// bucket_index drives the length; shorter columns yield NaN
	out := make([]Bucket, len(index))
	for i := range index {
		out[i] = Bucket{
			Index: toIndex(at(index, i)),
			Min:   toNumber(at(mins, i)),
			Max:   toNumber(at(maxs, i)),
			Count: toNumber(at(counts, i)),
		}
	}
	return out
}

func fromRows(raw any) []Bucket {
	if typed, ok := raw.([]Bucket); ok {
		out := make([]Bucket, len(typed))
		copy(out, typed)
		return out
	}

	rows := raw.([]any)
	out := make([]Bucket, len(rows))
	for i, row := range rows {
		obj, _ := row.(map[string]any)
		out[i] = Bucket{
			Index: toIndex(field(obj, FieldIndex)),
			Min:   toNumber(field(obj, FieldMin)),
			Max:   toNumber(field(obj, FieldMax)),
			Count: toNumber(field(obj, FieldCount)),
		}
	}
	return out
}

func hasFields(obj map[string]any, names ...string) bool {
	for _, name := range names {
		if _, ok := obj[name]; !ok {
			return false
		}
	}
	return true
}

// missing distinguishes an absent value from an explicit null.
type missing struct{}

func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return missing{}
}

func field(obj map[string]any, name string) any {
	if obj == nil {
		return missing{}
	}
	v, ok := obj[name]
	if !ok {
		return missing{}
	}
	return v
}

// toNumber follows JavaScript Number() coercion for the value kinds that
// decoded JSON and YAML produce.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func toIndex(v any) int {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return Unindexed
	}
	return int(f)
}
