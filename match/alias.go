package match

import (
	"strings"

	"github.com/hazyhaar/formfill/profile"
)

// Alias tables are closed-world dictionaries: a canonical profile value and
// the real-world spellings a select option or radio member may carry for it.
// They are data, not code, so new variants are added here without touching
// the resolution logic.

// genderAliases groups every accepted spelling of one gender value. The
// first entry of each row is the canonical form.
var genderAliases = [][]string{
	{"male", "m", "man", "boy", "he", "mr", "masculine", "masculino"},
	{"female", "f", "woman", "girl", "she", "ms", "mrs", "feminine", "femenino"},
	{"other", "o", "x", "non binary", "nonbinary", "nb", "diverse",
		"prefer not to say", "rather not say", "none"},
}

// campusAliases maps a canonical institution name to known abbreviations and
// spelling variants. Extend via RegisterCampusAliases at startup.
var campusAliases = map[string][]string{
	"massachusetts institute of technology": {"mit"},
	"university of california berkeley":     {"uc berkeley", "ucb", "berkeley", "cal"},
	"eidgenossische technische hochschule zurich": {"eth", "eth zurich", "ethz"},
	"indian institute of technology":              {"iit"},
	"national university of singapore":            {"nus"},
}

// RegisterCampusAliases adds spelling variants for an institution. Intended
// for configuration-time extension; not safe for concurrent use with Match.
func RegisterCampusAliases(canonical string, variants ...string) {
	key := normalize(canonical)
	campusAliases[key] = append(campusAliases[key], variants...)
}

// AliasesFor returns the lower-case strings an option value or display text
// may carry for the given profile attribute value. The value itself is
// always the first entry. For attributes without an alias table only the
// value (plus an initialism for multi-word values) is returned.
func AliasesFor(dataKey, value string) []string {
	v := normalize(value)
	if v == "" {
		return nil
	}

	switch dataKey {
	case profile.KeyGender:
		for _, row := range genderAliases {
			for _, a := range row {
				if a == v {
					return row
				}
			}
		}
		return []string{v}

	case profile.KeyCampus:
		out := []string{v}
		if variants, ok := campusAliases[v]; ok {
			out = append(out, variants...)
		} else {
			// Unknown institution: accept its initialism ("Grand Valley
			// State University" → "gvsu") since campus dropdowns often
			// list abbreviations only.
			if ini := initialism(v); len(ini) >= 2 {
				out = append(out, ini)
			}
		}
		// Reverse lookup: the profile may hold the abbreviation while the
		// option holds the full name.
		for canonical, variants := range campusAliases {
			for _, a := range variants {
				if a == v {
					out = append(out, canonical)
					out = append(out, variants...)
				}
			}
		}
		return dedup(out)

	default:
		return []string{v}
	}
}

// initialism builds "gvsu" from "grand valley state university", skipping
// connective words.
func initialism(v string) string {
	var b strings.Builder
	for _, w := range strings.Fields(v) {
		switch w {
		case "of", "the", "and", "for", "de", "la":
			continue
		}
		b.WriteByte(w[0])
	}
	return b.String()
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
