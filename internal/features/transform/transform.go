package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type enumerates the supported value transformations.
type Type string

const (
	TypeUppercase    Type = "uppercase"
	TypeLowercase    Type = "lowercase"
	TypeTrim         Type = "trim"
	TypeDateFormat   Type = "dateFormat"
	TypeNumberFormat Type = "numberFormat"
	TypeBoolean      Type = "boolean"
	TypeCustom       Type = "custom"
)

// Spec is one step of a mapping's transform pipeline. Custom steps name a
// script registered ahead of time; raw script source never rides along with
// a mapping.
type Spec struct {
	Type   Type   `json:"type" bson:"type"`
	Format string `json:"format,omitempty" bson:"format,omitempty"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
}

// dateLayouts is the parse ladder for dateFormat; first match wins.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC1123,
}

func applyBuiltin(value any, spec Spec) any {
	switch spec.Type {
	case TypeUppercase:
		return strings.ToUpper(stringify(value))
	case TypeLowercase:
		return strings.ToLower(stringify(value))
	case TypeTrim:
		return strings.TrimSpace(stringify(value))
	case TypeDateFormat:
		return normalizeDate(value)
	case TypeNumberFormat:
		return toNumber(value)
	case TypeBoolean:
		return truthy(value)
	default:
		return value
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// normalizeDate parses against the layout ladder and renders an RFC 3339
// UTC instant. Unparseable input passes through unchanged.
func normalizeDate(value any) any {
	if t, ok := value.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	s := strings.TrimSpace(stringify(value))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return value
}

// toNumber coerces to float64 where the value has a numeric reading;
// anything else passes through unchanged.
func toNumber(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return float64(1)
		}
		return float64(0)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n
		}
	}
	return value
}

// truthy mirrors the loose boolean reading the original tool applied:
// nil, false, zero and the empty string are false, everything else true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}
