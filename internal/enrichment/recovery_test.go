package enrichment

import (
	"reflect"
	"testing"
)

func TestRecoverText(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		field     string
		want      string
		wantLevel string
	}{
		{name: "object", raw: `{"country": "United States"}`, field: "country", want: "United States", wantLevel: LevelDirect},
		{name: "fenced object", raw: "```json\n{\"country\": \"France\"}\n```", field: "country", want: "France", wantLevel: LevelDirect},
		{name: "bare json string", raw: `"Canada"`, field: "country", want: "Canada", wantLevel: LevelDirect},
		{name: "case-insensitive key", raw: `{"Country": "Spain"}`, field: "country", want: "Spain", wantLevel: LevelDirect},
		{name: "number value", raw: `{"date_of_birth": 1963}`, field: "date_of_birth", want: "1963", wantLevel: LevelDirect},
		{name: "quoted json wrapper", raw: `"{\"country\": \"Italy\"}"`, field: "country", want: "Italy", wantLevel: LevelUnwrap},
		{name: "single quoted", raw: `'Germany'`, field: "country", want: "Germany", wantLevel: LevelUnwrap},
		{name: "height with bare quotes", raw: `{"height": "5' 10" (178cm)"}`, field: "height", want: `5' 10" (178cm)`, wantLevel: LevelRepair},
		{name: "height partly escaped", raw: `{"height": "6' 1\" (185cm)" }`, field: "height", want: `6' 1" (185cm)`, wantLevel: LevelDirect},
		{name: "intro with bare quotes", raw: "{\"intro\": \"Known as \"The Rock\".\nActor.\"}", field: "intro", want: "Known as \"The Rock\".\nActor.", wantLevel: LevelRepair},
		{name: "plain prose", raw: "  United Kingdom \n", field: "country", want: "United Kingdom", wantLevel: LevelFallback},
		{name: "broken json no repair", raw: `{"country": "US`, field: "country", want: `{"country": "US`, wantLevel: LevelFallback},
		{name: "empty", raw: "   ", field: "country", want: "", wantLevel: LevelFallback},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, level := RecoverText(tc.raw, tc.field)
			if got != tc.want {
				t.Fatalf("value = %q, want %q", got, tc.want)
			}
			if level != tc.wantLevel {
				t.Fatalf("level = %q, want %q", level, tc.wantLevel)
			}
		})
	}
}

func TestRecoverList(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []string
		level string
	}{
		{name: "object", raw: `{"professions": ["Actor", "Producer", "actor", ""]}`, want: []string{"Actor", "Producer"}, level: LevelDirect},
		{name: "bare array", raw: `["Director"]`, want: []string{"Director"}, level: LevelDirect},
		{name: "prose around array", raw: `Here you go: ["Writer", "Director"] enjoy`, want: []string{"Writer", "Director"}, level: LevelDirect},
		{name: "string instead of list", raw: `{"professions": "Actor"}`, want: []string{"Actor"}, level: LevelDirect},
		{name: "quoted wrapper", raw: `"[\"Actor\"]"`, want: []string{"Actor"}, level: LevelUnwrap},
		{name: "prose", raw: "Actor, Producer", want: []string{"Actor, Producer"}, level: LevelFallback},
		{name: "empty", raw: "", want: []string{}, level: LevelFallback},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, level := RecoverList(tc.raw, "professions")
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("values = %#v, want %#v", got, tc.want)
			}
			if level != tc.level {
				t.Fatalf("level = %q, want %q", level, tc.level)
			}
		})
	}
}

func TestRepairInnerQuotesOnlyForMatchingField(t *testing.T) {
	if _, ok := repairInnerQuotes(`{"country": "a"b"}`, "height"); ok {
		t.Fatal("expected repair to refuse a different field")
	}
	repaired, ok := repairInnerQuotes(`{"height": "5' 10" (178cm)"}`, "height")
	if !ok {
		t.Fatal("expected repair to apply")
	}
	if repaired != `{"height":"5' 10\" (178cm)"}` {
		t.Fatalf("unexpected repair %q", repaired)
	}
}

func TestRecoverGenderCode(t *testing.T) {
	tests := map[string]int{
		`{"gender": 1}`:   GenderCodeFemale,
		`2`:               GenderCodeMale,
		`{"gender": "3"}`: GenderCodeNonBinary,
		`female`:          GenderCodeFemale,
		`"Male"`:          GenderCodeMale,
		`no idea`:         GenderCodeNotSpecified,
		``:                GenderCodeNotSpecified,
	}
	for raw, want := range tests {
		if got := RecoverGenderCode(raw); got != want {
			t.Fatalf("RecoverGenderCode(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestParseDeathStatusIsStrict(t *testing.T) {
	tests := []struct {
		raw  string
		want DeathStatus
	}{
		{raw: `{"deceased": true, "date_of_death": "2022-01-20"}`, want: DeathStatus{Deceased: true, DateOfDeath: "2022-01-20"}},
		{raw: "```json\n{\"deceased\": true}\n```", want: DeathStatus{Deceased: true}},
		{raw: `{"deceased": false}`},
		{raw: `{"deceased": "true"}`},
		{raw: `{"deceased": 1}`},
		{raw: `"{\"deceased\": true}"`},
		{raw: `yes, they died`},
		{raw: `{"deceased": tru`},
		{raw: ``},
	}
	for _, tc := range tests {
		if got := ParseDeathStatus(tc.raw); got != tc.want {
			t.Fatalf("ParseDeathStatus(%q) = %#v, want %#v", tc.raw, got, tc.want)
		}
	}
}

func TestGenderLabel(t *testing.T) {
	cases := map[int]string{0: "Not Specified", 1: "Female", 2: "Male", 3: "Non-binary", 9: "Not Specified", -1: "Not Specified"}
	for code, want := range cases {
		if got := GenderLabel(code); got != want {
			t.Fatalf("GenderLabel(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestNormalizeProfessions(t *testing.T) {
	got := NormalizeProfessions([]string{"Actor", "Actress", "Producer"}, "Female")
	if !reflect.DeepEqual(got, []string{"Actress", "Producer"}) {
		t.Fatalf("unexpected %#v", got)
	}
	got = NormalizeProfessions([]string{"Actor"}, "Male")
	if !reflect.DeepEqual(got, []string{"Actor"}) {
		t.Fatalf("unexpected %#v", got)
	}
}
