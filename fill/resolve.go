package fill

import (
	"strings"
	"unicode"

	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/match"
)

// resolveOption picks the option of a select that corresponds to the
// profile value. Resolution ladder: exact match on value or visible text,
// then the value's aliases, then substring containment. Returns -1 when
// nothing fits.
func resolveOption(opts []fields.Option, dataKey, value string) int {
	want := fold(value)
	if want == "" {
		return -1
	}

	for i, o := range opts {
		if fold(o.Value) == want || fold(o.Text) == want {
			return i
		}
	}

	for _, alias := range match.AliasesFor(dataKey, value) {
		a := fold(alias)
		if a == "" {
			continue
		}
		for i, o := range opts {
			if fold(o.Value) == a || fold(o.Text) == a {
				return i
			}
		}
	}

	// Last resort: containment either way, longest option text first would
	// be fancier but linear order matches how browsers list options.
	for i, o := range opts {
		t := fold(o.Text)
		if t == "" {
			continue
		}
		if strings.Contains(t, want) || strings.Contains(want, t) {
			return i
		}
	}
	return -1
}

// resolveMember picks the radio member for the profile value, using the
// same ladder as resolveOption.
func resolveMember(members []fields.Member, dataKey, value string) *fields.Member {
	want := fold(value)
	if want == "" {
		return nil
	}

	for i := range members {
		if fold(members[i].Value) == want || fold(members[i].Text) == want {
			return &members[i]
		}
	}

	for _, alias := range match.AliasesFor(dataKey, value) {
		a := fold(alias)
		if a == "" {
			continue
		}
		for i := range members {
			if fold(members[i].Value) == a || fold(members[i].Text) == a {
				return &members[i]
			}
		}
	}

	for i := range members {
		t := fold(members[i].Text)
		if t == "" {
			continue
		}
		if strings.Contains(t, want) || strings.Contains(want, t) {
			return &members[i]
		}
	}
	return nil
}

// fold lower-cases and collapses punctuation, mirroring the extractor's
// search-text normalization so "Non-Binary" and "non binary" compare equal.
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
