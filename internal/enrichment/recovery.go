package enrichment

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"marquee/internal/services/llm"
)

// Recovery levels, in the order they are attempted.
const (
	LevelDirect   = "direct"
	LevelUnwrap   = "unwrap"
	LevelRepair   = "repair"
	LevelFallback = "fallback"
)

// repairFunc rewrites a malformed payload for one field into something that
// decodes, reporting false when the pattern does not apply.
type repairFunc func(raw, field string) (string, bool)

// fieldRepairs lists the known malformed-escaping patterns per field.
var fieldRepairs = map[string]repairFunc{
	"height":    repairInnerQuotes,
	"intro":     repairInnerQuotes,
	"biography": repairInnerQuotes,
}

// singleStringObject matches {"field": "<anything>"} spanning lines.
var singleStringObject = regexp.MustCompile(`(?s)^\s*\{\s*"([A-Za-z_]+)"\s*:\s*"(.*)"\s*\}\s*$`)

// repairInnerQuotes escapes bare double quotes inside the single string value
// of {"field": "..."}; models emit heights such as "5' 10" (178cm)" unescaped.
func repairInnerQuotes(raw, field string) (string, bool) {
	match := singleStringObject.FindStringSubmatch(llm.StripCodeFence(raw))
	if match == nil || !strings.EqualFold(match[1], field) {
		return "", false
	}
	inner := strings.ReplaceAll(match[2], `\"`, `"`)
	inner = strings.ReplaceAll(inner, `"`, `\"`)
	inner = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(inner)
	return `{"` + field + `":"` + inner + `"}`, true
}

// unwrapQuoted strips one surrounding quoted-string layer: a JSON string
// literal is decoded, otherwise matching single or double quotes are trimmed.
func unwrapQuoted(raw string) (string, bool) {
	trimmed := strings.TrimSpace(llm.StripCodeFence(raw))
	if len(trimmed) < 2 {
		return "", false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if first == '"' && last == '"' {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			return strings.TrimSpace(inner), true
		}
		return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
	}
	if first == '\'' && last == '\'' {
		return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
	}
	return "", false
}

// fallbackText is the last-resort value: the trimmed reply without fences.
func fallbackText(raw string) string {
	return strings.TrimSpace(llm.StripCodeFence(raw))
}

// decodeFieldValue returns the JSON value for field, read either from an
// object carrying the field or from a bare JSON value.
func decodeFieldValue(raw, field string) (json.RawMessage, bool) {
	var object map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &object); err == nil {
		return lookupField(object, field)
	}
	var value json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &value); err == nil {
		return value, true
	}
	return nil, false
}

func lookupField(object map[string]json.RawMessage, field string) (json.RawMessage, bool) {
	if value, ok := object[field]; ok {
		return value, true
	}
	for key, value := range object {
		if strings.EqualFold(key, field) {
			return value, true
		}
	}
	if len(object) == 1 {
		for _, value := range object {
			return value, true
		}
	}
	return nil, false
}

// RecoverText extracts a string attribute from a model reply. It never fails:
// when no structured level succeeds the trimmed reply itself is returned.
// The second result names the level that produced the value.
func RecoverText(raw, field string) (string, string) {
	if value, ok := decodeText(raw, field); ok {
		return value, LevelDirect
	}
	if inner, ok := unwrapQuoted(raw); ok {
		if value, ok := decodeText(inner, field); ok {
			return value, LevelUnwrap
		}
	}
	if repair, ok := fieldRepairs[field]; ok {
		if repaired, ok := repair(raw, field); ok {
			if value, ok := decodeText(repaired, field); ok {
				return value, LevelRepair
			}
		}
	}
	if inner, ok := unwrapQuoted(raw); ok && !looksStructured(inner) {
		return inner, LevelUnwrap
	}
	return fallbackText(raw), LevelFallback
}

func decodeText(raw, field string) (string, bool) {
	value, ok := decodeFieldValue(raw, field)
	if !ok {
		return "", false
	}
	var text string
	if json.Unmarshal(value, &text) == nil {
		text = strings.TrimSpace(text)
		if looksStructured(text) {
			return "", false
		}
		return text, true
	}
	var number json.Number
	if json.Unmarshal(value, &number) == nil {
		return number.String(), true
	}
	return "", false
}

// RecoverList extracts a list attribute. When every structured level fails
// the trimmed reply becomes a single-element list, or an empty list when the
// reply is blank.
func RecoverList(raw, field string) ([]string, string) {
	if values, ok := decodeList(raw, field); ok {
		return values, LevelDirect
	}
	if inner, ok := unwrapQuoted(raw); ok {
		if values, ok := decodeList(inner, field); ok {
			return values, LevelUnwrap
		}
	}
	text := fallbackText(raw)
	if text == "" {
		return []string{}, LevelFallback
	}
	return []string{text}, LevelFallback
}

func decodeList(raw, field string) ([]string, bool) {
	value, ok := decodeFieldValue(raw, field)
	if !ok {
		return nil, false
	}
	var values []string
	if json.Unmarshal(value, &values) == nil {
		return cleanList(values), true
	}
	var single string
	if json.Unmarshal(value, &single) == nil && !looksStructured(single) {
		return cleanList([]string{single}), true
	}
	return nil, false
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

// RecoverGenderCode extracts the numeric gender code. Unparseable replies
// yield 0 (not specified).
func RecoverGenderCode(raw string) int {
	if value, ok := decodeFieldValue(raw, "gender"); ok {
		var code int
		if json.Unmarshal(value, &code) == nil {
			return code
		}
	}
	text, _ := RecoverText(raw, "gender")
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		return n
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "female", "woman":
		return GenderCodeFemale
	case "male", "man":
		return GenderCodeMale
	case "non-binary", "nonbinary":
		return GenderCodeNonBinary
	default:
		return GenderCodeNotSpecified
	}
}

// DeathStatus is the decoded reply of the death check.
type DeathStatus struct {
	Deceased    bool   `json:"deceased"`
	DateOfDeath string `json:"date_of_death"`
}

// ParseDeathStatus accepts only a well-formed object whose deceased field is
// the JSON literal true. Everything else, including recoverable
// malformations, reads as not deceased.
func ParseDeathStatus(raw string) DeathStatus {
	var object map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &object); err != nil {
		return DeathStatus{}
	}
	flag, ok := object["deceased"]
	if !ok || strings.TrimSpace(string(flag)) != "true" {
		return DeathStatus{}
	}
	status := DeathStatus{Deceased: true}
	if date, ok := object["date_of_death"]; ok {
		var text string
		if json.Unmarshal(date, &text) == nil {
			status.DateOfDeath = strings.TrimSpace(text)
		}
	}
	return status
}

func looksStructured(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")
}
