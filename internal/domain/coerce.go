package domain

import (
	"math"
	"strconv"
	"strings"
)

// maxSafeInt mirrors the largest integer a JSON client can represent exactly.
const maxSafeInt = 1<<53 - 1

// Int coerces a decoded JSON value into a non-negative integer, returning
// fallback for anything that is not a finite number or numeric string.
func Int(v any, fallback int) int {
	f, ok := number(v)
	if !ok || f < 0 || f > maxSafeInt {
		return fallback
	}
	return int(f)
}

// Int64 behaves like Int for millisecond timestamps.
func Int64(v any, fallback int64) int64 {
	f, ok := number(v)
	if !ok || f < 0 || f > maxSafeInt {
		return fallback
	}
	return int64(f)
}

// Seconds coerces a client-reported duration. Non-finite or negative values
// become zero and huge values are capped so cumulative sums stay finite.
func Seconds(v any) float64 {
	f, ok := number(v)
	if !ok || f < 0 {
		return 0
	}
	return math.Min(f, maxSafeInt)
}

// StudentID coerces a student identifier. Surrounding whitespace is dropped so
// join, answer and leave payloads agree on the same key.
func StudentID(v any) string {
	return strings.TrimSpace(String(v))
}

// String coerces scalars to their textual form; objects and arrays become "".
func String(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Bool follows JSON truthiness for booleans, "true" strings and non-zero numbers.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return false
	}
}

// Strings coerces an array into strings. Non-arrays yield nil.
func Strings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, String(item))
	}
	return out
}

// Ints keeps only the elements of an array that are valid non-negative integers.
func Ints(v any) []int {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		f, ok := number(item)
		if !ok || f < 0 || f > maxSafeInt || f != math.Trunc(f) {
			continue
		}
		out = append(out, int(f))
	}
	return out
}

// Pin normalizes a room identifier; numeric PINs are accepted as numbers.
func Pin(v any) string {
	return strings.TrimSpace(String(v))
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
