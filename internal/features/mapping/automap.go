package mapping

import (
	"strings"

	common_models "go-syncbridge/internal/common/models"

	"github.com/google/uuid"
)

// AutoMap pairs every source field with the first destination field whose
// case-folded name equals, contains, or is contained by the source name.
// Candidates are checked in the order given; earlier destination fields win
// ties. Source fields with no candidate are returned as unmapped.
func AutoMap(source, dest []common_models.FieldDescriptor) AutoMapResult {
	var result AutoMapResult
	for _, src := range source {
		matched := false
		for i := range dest {
			if !looseNameMatch(src.Name, dest[i].Name) {
				continue
			}
			d := dest[i]
			result.Mappings = append(result.Mappings, FieldMapping{
				ID:          uuid.NewString(),
				SourceField: cloneField(src),
				DestField:   cloneField(d),
				Confidence:  confidence(src, d),
				Enabled:     true,
			})
			matched = true
			break
		}
		if !matched {
			result.Unmapped = append(result.Unmapped, src)
		}
	}
	return result
}

// StrictMatch is the confirm-grade matcher: names are reduced to their
// alphabetic characters before the substring test, and two email-typed
// fields always pair. Matches carry a flat 0.9 confidence.
func StrictMatch(source, dest []common_models.FieldDescriptor) AutoMapResult {
	var result AutoMapResult
	for _, src := range source {
		matched := false
		for i := range dest {
			if !strictPair(src, dest[i]) {
				continue
			}
			d := dest[i]
			result.Mappings = append(result.Mappings, FieldMapping{
				ID:          uuid.NewString(),
				SourceField: cloneField(src),
				DestField:   cloneField(d),
				Confidence:  0.9,
				Enabled:     true,
			})
			matched = true
			break
		}
		if !matched {
			result.Unmapped = append(result.Unmapped, src)
		}
	}
	return result
}

func looseNameMatch(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func strictPair(src, dst common_models.FieldDescriptor) bool {
	a := alphaOnly(src.Name)
	b := alphaOnly(dst.Name)
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	return src.Type == "email" && dst.Type == "email"
}

func alphaOnly(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// confidence scores 0.8 for an exact case-insensitive name match plus 0.2
// for an equal declared type, capped at 1.0.
func confidence(src, dst common_models.FieldDescriptor) float64 {
	score := 0.0
	if strings.EqualFold(src.Name, dst.Name) {
		score += 0.8
	}
	if src.Type == dst.Type {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}

func cloneField(f common_models.FieldDescriptor) *common_models.FieldDescriptor {
	c := f
	return &c
}
