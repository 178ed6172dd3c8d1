package match

import (
	"testing"

	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/profile"
)

func testProfile(attrs map[string]string, custom map[string]string) *profile.Profile {
	p := &profile.Profile{Attributes: attrs, Custom: custom}
	p.Normalize()
	return p
}

func byField(results []Result) map[*fields.Descriptor]Result {
	out := make(map[*fields.Descriptor]Result, len(results))
	for _, r := range results {
		if _, dup := out[r.Field]; dup {
			panic("duplicate result for one field")
		}
		out[r.Field] = r
	}
	return out
}

func TestMatch_NameAndEmailScenario(t *testing.T) {
	nameField := fields.NewDescriptor(fields.KindShortText, nil, "Your Name")
	emailField := fields.NewDescriptor(fields.KindShortText, map[string]string{"type": "email"})

	p := testProfile(map[string]string{
		profile.KeyFullName: "Jane Doe",
		profile.KeyEmail:    "jane@x.edu",
	}, nil)

	results := Match([]*fields.Descriptor{nameField, emailField}, p)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}

	m := byField(results)
	if r := m[nameField]; r.DataKey != profile.KeyFullName || r.Value != "Jane Doe" {
		t.Errorf("name field matched %q (%q), want full_name", r.DataKey, r.Value)
	}
	if r := m[emailField]; r.DataKey != profile.KeyEmail {
		t.Errorf("email field matched %q, want email", r.DataKey)
	}
}

func TestMatch_EmptyProfile(t *testing.T) {
	f := fields.NewDescriptor(fields.KindShortText, nil, "Your Name")
	results := Match([]*fields.Descriptor{f}, testProfile(nil, nil))
	if len(results) != 0 {
		t.Fatalf("empty profile produced %d results", len(results))
	}
}

func TestMatch_EmptyValueNeverEligible(t *testing.T) {
	f := fields.NewDescriptor(fields.KindShortText, nil, "Email address")
	p := testProfile(map[string]string{profile.KeyEmail: "   "}, nil)
	if results := Match([]*fields.Descriptor{f}, p); len(results) != 0 {
		t.Fatalf("blank attribute value produced %d results", len(results))
	}
}

func TestMatch_ConfidenceAboveThreshold(t *testing.T) {
	fs := []*fields.Descriptor{
		fields.NewDescriptor(fields.KindShortText, nil, "Your Name"),
		fields.NewDescriptor(fields.KindRadioGroup, map[string]string{"name": "sex"}),
		fields.NewDescriptor(fields.KindDate, map[string]string{"type": "date"}),
	}
	p := testProfile(map[string]string{
		profile.KeyFullName:    "Jane Doe",
		profile.KeyGender:      "Female",
		profile.KeyDateOfBirth: "2004-03-08",
	}, nil)

	for _, r := range Match(fs, p) {
		if r.Confidence <= MinConfidence {
			t.Errorf("result %q emitted at confidence %v, not above threshold", r.DataKey, r.Confidence)
		}
		if r.Confidence > 1 {
			t.Errorf("confidence %v out of range", r.Confidence)
		}
	}
}

func TestMatch_GenderViaShortKeyword(t *testing.T) {
	f := fields.NewDescriptor(fields.KindRadioGroup, map[string]string{"name": "sex"})
	p := testProfile(map[string]string{profile.KeyGender: "Male"}, nil)

	results := Match([]*fields.Descriptor{f}, p)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].DataKey != profile.KeyGender {
		t.Errorf("matched %q, want gender", results[0].DataKey)
	}
}

func TestMatch_CustomFieldBeatsBuiltin(t *testing.T) {
	// "github" matches a custom key exactly; no built-in keyword applies.
	f := fields.NewDescriptor(fields.KindShortText, map[string]string{"name": "github"})
	p := testProfile(
		map[string]string{profile.KeyFullName: "Jane Doe"},
		map[string]string{"github": "janedoe"},
	)

	results := Match([]*fields.Descriptor{f}, p)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Strategy != StrategyCustom || r.Value != "janedoe" {
		t.Errorf("got strategy %q value %q, want custom/janedoe", r.Strategy, r.Value)
	}
}

func TestMatch_CustomWeighting(t *testing.T) {
	// The same matched length scores higher as a custom field than as a
	// built-in keyword: explicit user intent wins ties.
	text := fields.NewDescriptor(fields.KindShortText, map[string]string{"name": "gender"})
	p := testProfile(
		map[string]string{profile.KeyGender: "Female"},
		map[string]string{"gender": "genderfluid"},
	)
	results := Match([]*fields.Descriptor{text}, p)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Strategy != StrategyCustom {
		t.Errorf("strategy = %q, want custom", results[0].Strategy)
	}
}

func TestMatch_PositionalFallback(t *testing.T) {
	// Four unlabeled leading fields; nothing else matches them.
	var fs []*fields.Descriptor
	for i := 0; i < 4; i++ {
		d := fields.NewDescriptor(fields.KindShortText, map[string]string{"name": "q"})
		d.Index = i
		fs = append(fs, d)
	}
	p := testProfile(map[string]string{
		profile.KeyFullName: "Jane Doe",
		profile.KeyEmail:    "jane@x.edu",
		profile.KeyPhone:    "5550100",
		profile.KeyIDNumber: "A12345",
	}, nil)

	results := Match(fs, p)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	m := byField(results)
	wantKeys := []string{profile.KeyFullName, profile.KeyEmail, profile.KeyPhone, profile.KeyIDNumber}
	for i, f := range fs {
		r := m[f]
		if r.Strategy != StrategyPositional || r.DataKey != wantKeys[i] {
			t.Errorf("field %d: got (%q, %q), want positional %q", i, r.Strategy, r.DataKey, wantKeys[i])
		}
	}
}

func TestMatch_KindFallbackDate(t *testing.T) {
	// No type attribute and no useful text: only the element kind hints at
	// the destination.
	d := fields.NewDescriptor(fields.KindDate, map[string]string{"name": "q7"})
	d.Index = 10 // outside the positional window
	p := testProfile(map[string]string{profile.KeyDateOfBirth: "2004-03-08"}, nil)

	results := Match([]*fields.Descriptor{d}, p)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Strategy != StrategyKind || results[0].DataKey != profile.KeyDateOfBirth {
		t.Errorf("got (%q, %q), want kind fallback to date_of_birth", results[0].Strategy, results[0].DataKey)
	}
}

func TestMatch_SortedByConfidence(t *testing.T) {
	strong := fields.NewDescriptor(fields.KindShortText, nil, "Full name", "Your Name")
	weak := fields.NewDescriptor(fields.KindShortText, map[string]string{"name": "sex"})
	weak.Index = 9

	p := testProfile(map[string]string{
		profile.KeyFullName: "Jane Doe",
		profile.KeyGender:   "Female",
	}, nil)

	results := Match([]*fields.Descriptor{weak, strong}, p)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Confidence < results[1].Confidence {
		t.Error("results not sorted by confidence descending")
	}
	if results[0].Field != strong {
		t.Error("strong match should sort first")
	}
}

func TestAliasesFor_Gender(t *testing.T) {
	aliases := AliasesFor(profile.KeyGender, "Male")
	want := map[string]bool{"male": false, "m": false, "man": false}
	for _, a := range aliases {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for a, seen := range want {
		if !seen {
			t.Errorf("gender aliases for Male missing %q (got %v)", a, aliases)
		}
	}
}

func TestAliasesFor_CampusInitialism(t *testing.T) {
	aliases := AliasesFor(profile.KeyCampus, "Grand Valley State University")
	found := false
	for _, a := range aliases {
		if a == "gvsu" {
			found = true
		}
	}
	if !found {
		t.Errorf("campus aliases missing initialism: %v", aliases)
	}
}

func TestAliasesFor_CampusReverse(t *testing.T) {
	aliases := AliasesFor(profile.KeyCampus, "MIT")
	found := false
	for _, a := range aliases {
		if a == "massachusetts institute of technology" {
			found = true
		}
	}
	if !found {
		t.Errorf("abbreviation should resolve to canonical name: %v", aliases)
	}
}

func TestAliasesFor_Default(t *testing.T) {
	aliases := AliasesFor(profile.KeyCity, "Zurich")
	if len(aliases) != 1 || aliases[0] != "zurich" {
		t.Errorf("default aliases = %v, want [zurich]", aliases)
	}
}
