// Package match scores extracted field descriptors against a profile and
// picks at most one destination attribute per field.
//
// Strategies run in a fixed cascade per field, each overriding the current
// best only when it scores strictly higher:
//
//	exact keyword → partial word → custom fields → positional → element kind
//
// The minimum confidence threshold is deliberately low: the user reviews
// the filled form before submitting, so recall beats precision here.
package match

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/profile"
)

// ErrNoMatches is returned when no field scored above the threshold.
var ErrNoMatches = errors.New("match: no fields matched profile data")

// Strategy identifies which heuristic produced a result.
type Strategy string

const (
	StrategyKeyword    Strategy = "keyword"
	StrategyPartial    Strategy = "partial"
	StrategyCustom     Strategy = "custom"
	StrategyPositional Strategy = "positional"
	StrategyKind       Strategy = "kind"
)

// priority orders strategies for tie-breaking; earlier wins.
var priority = map[Strategy]int{
	StrategyKeyword:    0,
	StrategyPartial:    1,
	StrategyCustom:     2,
	StrategyPositional: 3,
	StrategyKind:       4,
}

// Result binds one field to one profile attribute.
type Result struct {
	Field      *fields.Descriptor
	DataKey    string
	Value      string
	Confidence float64
	Strategy   Strategy
}

// Tuning constants. Empirically chosen; the scenario tests pin the
// behaviour they need, the exact values are a starting point.
const (
	// MinConfidence is the exclusive lower bound for emitted results.
	MinConfidence = 0.05

	// keywordNorm divides the summed matched-keyword length into [0,1].
	keywordNorm = 30.0

	// customNorm is smaller than keywordNorm: custom fields are explicit
	// user intent and should win ties against built-in keywords.
	customNorm = 20.0

	// partialFloor is the minimum character length credited in partial
	// matching, filtering one/two-letter false positives.
	partialFloor = 4

	// partialSkip short-circuits partial matching when exact matching
	// already reached this confidence.
	partialSkip = 0.5

	positionalConfidence = 0.15
	kindConfidence       = 0.25
	positionalWindow     = 4
)

// positionalKeys are assigned to the first fields of a form that nothing
// else matched, in encounter order.
var positionalKeys = []string{
	profile.KeyFullName, profile.KeyEmail, profile.KeyPhone, profile.KeyIDNumber,
}

// Match scores every field against the profile and returns the surviving
// results sorted by confidence, highest first. Fields without any result
// above MinConfidence are omitted; an empty profile yields no results.
func Match(fs []*fields.Descriptor, p *profile.Profile) []Result {
	var out []Result
	for _, f := range fs {
		if f.SearchText() == "" {
			continue
		}
		if r, ok := matchField(f, p); ok {
			out = append(out, r)
		}
	}

	// Highest confidence first, so contended destinations (a radio group,
	// a shared select) receive their best write first.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return priority[out[i].Strategy] < priority[out[j].Strategy]
	})
	return out
}

func matchField(f *fields.Descriptor, p *profile.Profile) (Result, bool) {
	best := Result{Field: f}

	consider := func(r Result) {
		if r.Confidence > best.Confidence {
			best = r
		}
	}

	text := f.SearchText()

	// 1. Exact keyword matching.
	for _, key := range profile.Keys {
		value := p.Get(key)
		if value == "" {
			continue
		}
		if score := keywordScore(text, keywords[key], keywordNorm); score > 0 {
			consider(Result{Field: f, DataKey: key, Value: value, Confidence: score, Strategy: StrategyKeyword})
		}
	}

	// 2. Partial word matching, only when exact matching stayed weak.
	if best.Confidence < partialSkip {
		words := strings.Fields(text)
		for _, key := range profile.Keys {
			value := p.Get(key)
			if value == "" {
				continue
			}
			if score := partialScore(words, keywords[key]); score > 0 {
				consider(Result{Field: f, DataKey: key, Value: value, Confidence: score, Strategy: StrategyPartial})
			}
		}
	}

	// 3. Custom fields, weighted above built-ins.
	for key, value := range p.Custom {
		if value == "" {
			continue
		}
		nk := normalize(key)
		if nk == "" {
			continue
		}
		if score := keywordScore(text, []string{nk}, customNorm); score > 0 {
			consider(Result{Field: f, DataKey: key, Value: value, Confidence: score, Strategy: StrategyCustom})
		}
	}

	// 4. Positional fallback for the leading fields of the form.
	if best.Confidence == 0 && f.Index < positionalWindow {
		key := positionalKeys[f.Index]
		if value := p.Get(key); value != "" {
			consider(Result{Field: f, DataKey: key, Value: value, Confidence: positionalConfidence, Strategy: StrategyPositional})
		}
	}

	// 5. Element-kind fallback.
	if best.Confidence == 0 {
		if key := kindKey(f); key != "" {
			if value := p.Get(key); value != "" {
				consider(Result{Field: f, DataKey: key, Value: value, Confidence: kindConfidence, Strategy: StrategyKind})
			}
		}
	}

	if best.Confidence <= MinConfidence {
		return Result{}, false
	}
	return best, true
}

// keywordScore sums the lengths of keywords contained in text, divided by
// norm and capped at 1.
func keywordScore(text string, kws []string, norm float64) float64 {
	total := 0
	for _, kw := range kws {
		if strings.Contains(text, kw) {
			total += len(kw)
		}
	}
	if total == 0 {
		return 0
	}
	score := float64(total) / norm
	if score > 1 {
		score = 1
	}
	return score
}

// partialScore tests substring containment between individual words and
// keywords, crediting the shorter of the two lengths. Words and keywords
// below partialFloor characters are ignored.
func partialScore(words, kws []string) float64 {
	total := 0
	for _, kw := range kws {
		for _, w := range words {
			short := min(len(w), len(kw))
			if short < partialFloor {
				continue
			}
			if strings.Contains(w, kw) || strings.Contains(kw, w) {
				total += short
				break
			}
		}
	}
	if total == 0 {
		return 0
	}
	score := float64(total) / keywordNorm
	if score > 1 {
		score = 1
	}
	return score
}

// kindKey maps an element kind directly to a canonical attribute.
func kindKey(f *fields.Descriptor) string {
	if f.Kind == fields.KindDate {
		return profile.KeyDateOfBirth
	}
	switch f.Attrs["type"] {
	case "email":
		return profile.KeyEmail
	case "tel":
		return profile.KeyPhone
	}
	return ""
}

// normalize applies the same lower-case/punctuation folding the extractor
// applies to search text, so alias and custom-key comparisons line up.
func normalize(s string) string {
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
