package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Stored records carry no version tag, so every reader goes through these
// helpers: a missing field or one of the wrong type yields the default.

func decodeObject(raw []byte) map[string]interface{} {
	var m map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}

// textField accepts strings and numbers. Numbers are rendered without an
// exponent so legacy numeric kilometre values survive as digits.
func textField(m map[string]interface{}, key, def string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return def
	}
}

// intField accepts JSON numbers and strings holding a plain integer.
func intField(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return def
		}
		return int(math.Trunc(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

func boolField(m map[string]interface{}, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func arrayField(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key].([]interface{}); ok {
		return v
	}
	return nil
}

// floatField accepts finite JSON numbers and numeric strings.
func floatField(m map[string]interface{}, key string, def float64) float64 {
	var f float64
	switch v := m[key].(type) {
	case float64:
		f = v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		f = n
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
