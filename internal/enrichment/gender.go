package enrichment

import (
	"strings"

	"marquee/internal/store"
)

// Catalog gender codes.
const (
	GenderCodeNotSpecified = 0
	GenderCodeFemale       = 1
	GenderCodeMale         = 2
	GenderCodeNonBinary    = 3
)

// GenderLabel maps a gender code to its stored label.
func GenderLabel(code int) string {
	switch code {
	case GenderCodeFemale:
		return store.GenderFemale
	case GenderCodeMale:
		return store.GenderMale
	case GenderCodeNonBinary:
		return store.GenderNonBinary
	default:
		return store.GenderNotSpecified
	}
}

// NormalizeProfessions applies gendered profession labels: for a female
// person "Actor" becomes "Actress". Duplicates created by the rewrite are
// dropped.
func NormalizeProfessions(professions []string, gender string) []string {
	out := make([]string, 0, len(professions))
	seen := make(map[string]struct{}, len(professions))
	for _, profession := range professions {
		profession = strings.TrimSpace(profession)
		if profession == "" {
			continue
		}
		if gender == store.GenderFemale && strings.EqualFold(profession, "actor") {
			profession = "Actress"
		}
		key := strings.ToLower(profession)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, profession)
	}
	return out
}
