package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/funcall-ai/funcall/schema"
)

// Coerce maps loosely-typed argument values to the declared parameter types
// where the conversion is unambiguous. Unmapped combinations pass through
// untouched and are left to schema validation.
func Coerce(args map[string]any, d *schema.ToolDescriptor) map[string]any {
	if len(args) == 0 {
		return args
	}
	tags := make(map[string]string, len(d.Parameters))
	for _, p := range d.Parameters {
		tags[p.Name] = p.Type
	}
	res := make(map[string]any, len(args))
	for name, v := range args {
		res[name] = CoerceValue(tags[name], v)
	}
	return res
}

// CoerceValue converts one value toward the canonical type tag.
func CoerceValue(tag string, v any) any {
	switch tag {
	case schema.TagInteger:
		return coerceInteger(v)
	case schema.TagNumber:
		return coerceNumber(v)
	case schema.TagBoolean:
		return coerceBoolean(v)
	case schema.TagString:
		return coerceString(v)
	default:
		// array, object and unknown tags pass through
		return v
	}
}

func coerceInteger(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return int64(t)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	}
	return v
}

func coerceNumber(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return v
}

func coerceBoolean(v any) any {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return v
}

func coerceString(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return v
}
