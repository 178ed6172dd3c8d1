// Package fields scans a live page for fillable form elements and produces a
// normalized Descriptor per element: structural attributes, label text
// gathered from the surrounding markup, option lists, and radio grouping.
//
// Extraction is read-only. Descriptors hold borrowed element handles that
// are only valid until the next navigation or rescan; nothing here survives
// a fill invocation except the short-TTL structural cache.
package fields

import (
	"strings"
	"unicode"

	"github.com/go-rod/rod"
)

// Kind classifies a fillable element.
type Kind string

const (
	KindShortText  Kind = "short-text"
	KindLongText   Kind = "long-text"
	KindDate       Kind = "date"
	KindSelect     Kind = "single-select"
	KindRadioGroup Kind = "radio-group"
	KindCheckbox   Kind = "checkbox"
)

// Option is one choice of a single-select.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Member is one radio input of a radio group. El is borrowed from the live
// page, same lifetime rules as Descriptor.El.
type Member struct {
	Value string
	Text  string
	El    *rod.Element
}

// Descriptor is the normalized description of one candidate input.
type Descriptor struct {
	// El is a non-owning handle into the live document. Valid only for the
	// detection pass that produced it.
	El *rod.Element

	Kind    Kind
	Attrs   map[string]string // name, id, placeholder, class, aria-label, type, autocomplete
	Labels  []string          // closest/most specific first
	Options []Option          // single-select only
	Members []Member          // radio-group only
	Index   int               // encounter order on the page

	searchText string
}

// NewDescriptor builds a descriptor outside an extraction pass, for
// consumers that synthesize fields (offline matching, tests). The element
// handle stays nil.
func NewDescriptor(kind Kind, attrs map[string]string, labels ...string) *Descriptor {
	if attrs == nil {
		attrs = map[string]string{}
	}
	d := &Descriptor{Kind: kind, Attrs: attrs, Labels: labels}
	d.computeSearchText()
	return d
}

// SearchText returns the lower-cased, punctuation-normalized concatenation
// of attributes and label candidates. Computed once per detection pass.
func (d *Descriptor) SearchText() string {
	return d.searchText
}

func (d *Descriptor) computeSearchText() {
	parts := make([]string, 0, len(d.Attrs)+len(d.Labels))
	for _, k := range []string{"name", "id", "placeholder", "class", "aria-label", "autocomplete", "type"} {
		if v := d.Attrs[k]; v != "" {
			parts = append(parts, v)
		}
	}
	parts = append(parts, d.Labels...)
	d.searchText = normalizeText(strings.Join(parts, " "))
}

// normalizeText lower-cases s and collapses punctuation and whitespace runs
// into single spaces, so keyword tests see "first_name", "First-Name" and
// "First Name" identically.
func normalizeText(s string) string {
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
