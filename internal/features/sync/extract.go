package sync

import (
	"strings"

	"go-syncbridge/internal/gateways"
)

// ExtractAttioValue pulls a flat scalar out of the nested per-attribute
// value list keyed by slug. The first entry of the list is decoded by
// whichever shape key it carries. Unrecognized shapes, empty lists and
// missing slugs yield nil; this function never fails.
func ExtractAttioValue(record gateways.AttioRecord, slug string) any {
	if record.Values == nil {
		return nil
	}
	fieldData, ok := record.Values[slug]
	if !ok {
		return nil
	}

	switch data := fieldData.(type) {
	case []any:
		if len(data) == 0 {
			return nil
		}
		return decodeAttioEntry(data[0])
	case string, float64, bool:
		return data
	}
	return nil
}

func decodeAttioEntry(entry any) any {
	switch v := entry.(type) {
	case string, float64:
		return v
	case map[string]any:
		return decodeAttioShape(v)
	}
	return nil
}

func decodeAttioShape(m map[string]any) any {
	if v, ok := m["value"]; ok {
		return v
	}
	if v, ok := m["domain"]; ok {
		return v
	}
	if v, ok := m["email_address"]; ok {
		return v
	}
	if v, ok := m["original_url"]; ok {
		return v
	}
	if opt, ok := m["option"].(map[string]any); ok {
		return opt["title"]
	}
	if _, hasTarget := m["target_object"]; hasTarget {
		if id, ok := m["target_record_id"]; ok {
			if name, ok := m["referenced_actor_name"]; ok && name != nil {
				return name
			}
			return id
		}
	}
	if _, hasLoc := m["locality"]; hasLoc {
		return joinLocation(m)
	}
	if _, hasRegion := m["region"]; hasRegion {
		return joinLocation(m)
	}
	return nil
}

func joinLocation(m map[string]any) any {
	locality, _ := m["locality"].(string)
	region, _ := m["region"].(string)
	joined := strings.TrimSpace(locality + ", " + region)
	joined = strings.TrimPrefix(joined, ", ")
	joined = strings.TrimSuffix(joined, ",")
	joined = strings.TrimSpace(joined)
	if joined == "" {
		return nil
	}
	return joined
}

// extractAirtableValue is the flat-map counterpart; fields are keyed by
// field name.
func extractAirtableValue(record gateways.AirtableRecord, name string) any {
	if record.Fields == nil {
		return nil
	}
	return record.Fields[name]
}

// emptyValue reports values the mapper drops from the outbound payload.
func emptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
