package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify folds name into a lowercase ASCII-ish slug: diacritics are
// stripped, runs of anything other than letters and digits become a single
// hyphen.
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// SlugWithSuffix appends suffix to the slug of name, used to keep slugs unique
// across people or films that share a name.
func SlugWithSuffix(name, suffix string) string {
	slug := Slugify(name)
	suffix = Slugify(suffix)
	switch {
	case slug == "":
		return suffix
	case suffix == "":
		return slug
	default:
		return slug + "-" + suffix
	}
}

var titleCaser = cases.Title(language.English)

// TitleCase normalizes short generated labels such as "dark brown" to
// "Dark Brown". Whitespace is collapsed.
func TitleCase(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(value))
}
