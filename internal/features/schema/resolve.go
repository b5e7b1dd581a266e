package schema

import (
	"strings"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/gateways"
	"go-syncbridge/pkg/utils"
)

// parentKindFromList inspects list metadata for an explicit parent object
// reference, in priority order. The reference arrives in several wire shapes
// (string array, object carrying api_slug/id, bare string) depending on
// which endpoint and workspace produced it. Returns "" when nothing usable
// is present.
func parentKindFromList(list *gateways.AttioList) string {
	if kind := decodeObjectRef(list.ParentObject); kind != "" {
		return kind
	}
	if kind := decodeObjectRef(list.WorkspaceObject); kind != "" {
		return kind
	}
	if kind := decodeObjectRef(list.Object); kind != "" {
		return kind
	}
	return list.ParentObjectType
}

func decodeObjectRef(ref any) string {
	switch v := ref.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case map[string]any:
		if s, ok := v["api_slug"].(string); ok && s != "" {
			return s
		}
		if s, ok := v["id"].(string); ok {
			return s
		}
	}
	return ""
}

// guessParentKind falls back to a name-based heuristic when the list carries
// no parent reference at all. Person-ish names win over company-ish ones,
// and "people" is the default when neither matches.
func guessParentKind(listName string) string {
	name := strings.ToLower(listName)

	for _, hint := range []string{"people", "person", "contact", "lead", "prospect"} {
		if strings.Contains(name, hint) {
			return "people"
		}
	}
	for _, hint := range []string{"compan", "account", "organization", "business"} {
		if strings.Contains(name, hint) {
			return "companies"
		}
	}
	return "people"
}

// resolveObjectSlug maps a declared or guessed parent kind onto an actual
// addressable object from the workspace's object collections: by id, by api
// slug, by case-insensitive name, or by singular/plural normalization. Falls
// back to the kind itself when nothing matches.
func resolveObjectSlug(kind string, objects []common_models.Collection) string {
	lowered := strings.ToLower(kind)
	for _, obj := range objects {
		if obj.Kind != common_models.CollectionObject {
			continue
		}
		if obj.ID == kind || obj.APISlug == kind {
			return firstNonEmpty(obj.APISlug, obj.ID)
		}
		name := strings.ToLower(obj.Name)
		if name == lowered || name == utils.Singular(kind) {
			return firstNonEmpty(obj.APISlug, obj.ID)
		}
	}
	return kind
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
