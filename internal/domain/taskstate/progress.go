package taskstate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProgressKey is the metadata key holding the progress fraction.
const ProgressKey = "progress"

// Metadata is the opaque key-value bag stored with an item. Only
// ProgressKey is interpreted; other keys pass through merges untouched.
type Metadata map[string]any

// Clone returns a shallow copy; a nil bag clones to an empty one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NormalizeProgress parses a progress value into a fraction in [0,1].
// Numbers and numeric strings ("50%", "0,5") are accepted; values above 1
// are read as percentages. Anything else reports false.
func NormalizeProgress(v any) (float64, bool) {
	numeric, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	if numeric > 1 {
		numeric /= 100
	}
	return clamp(numeric, 0, 1), true
}

func toNumber(v any) (float64, bool) {
	var numeric float64
	switch value := v.(type) {
	case float64:
		numeric = value
	case float32:
		numeric = float64(value)
	case int:
		numeric = float64(value)
	case int32:
		numeric = float64(value)
	case int64:
		numeric = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, false
		}
		numeric = parsed
	case string:
		cleaned := strings.Replace(value, "%", "", 1)
		cleaned = strings.TrimSpace(strings.Replace(cleaned, ",", ".", 1))
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		numeric = parsed
	default:
		return 0, false
	}

	if math.IsNaN(numeric) || math.IsInf(numeric, 0) {
		return 0, false
	}
	return numeric, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ItemPercent returns an item's completion as a percentage in [0,100].
// Without a usable progress value a done item counts as 100, anything else
// as 0.
func ItemPercent(status Status, metadata Metadata) float64 {
	if raw, ok := toNumber(metadata[ProgressKey]); ok {
		if raw <= 1 {
			raw *= 100
		}
		return clamp(raw, 0, 100)
	}
	if status == Done {
		return 100
	}
	return 0
}

// ProjectPercent is the mean ItemPercent of the given items rounded to two
// decimals, or 0 when there are none.
func ProjectPercent(items []State) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += ItemPercent(item.Status, item.Metadata)
	}
	return math.Round(sum/float64(len(items))*100) / 100
}
