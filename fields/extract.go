package fields

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-rod/rod"
)

//go:embed describe.js
var describeJS string

// keyJS is the cheap first pass: enough structural identity to consult the
// cache before paying for the full describe round-trip.
const keyJS = `() => JSON.stringify({
	tag: this.tagName.toLowerCase(),
	type: (this.getAttribute('type') || '').toLowerCase(),
	id: this.id || '',
	name: this.getAttribute('name') || '',
	cls: String(this.className || '')
})`

const selector = `input, textarea, select`

// described is the decoded result of one describe.js evaluation.
type described struct {
	Tag           string   `json:"tag"`
	Type          string   `json:"type"`
	Name          string   `json:"name"`
	ID            string   `json:"id"`
	Placeholder   string   `json:"placeholder"`
	ClassName     string   `json:"className"`
	AriaLabel     string   `json:"ariaLabel"`
	Autocomplete  string   `json:"autocomplete"`
	Disabled      bool     `json:"disabled"`
	ReadOnly      bool     `json:"readOnly"`
	Skip          bool     `json:"skip"`
	Visible       bool     `json:"visible"`
	Value         string   `json:"value"`
	Checked       bool     `json:"checked"`
	Labels        []string `json:"labels"`
	Options       []Option `json:"options"`
	ContainerHTML string   `json:"containerHTML"`
}

// Extractor scans pages for fillable elements.
type Extractor struct {
	cfg    Config
	cache  *cache
	logger *slog.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{
		cfg:    cfg,
		cache:  newCache(cfg.CacheTTL),
		logger: cfg.Logger,
	}
}

// Invalidate drops the extraction cache. Called on document-changed signals.
func (e *Extractor) Invalidate() {
	e.cache.invalidate()
}

// Extract scans page and returns a Descriptor per fillable element.
// Unreadable or rejected elements are skipped silently; only a dead page
// handle is an error. The traversal is read-only.
func (e *Extractor) Extract(ctx context.Context, page *rod.Page) ([]*Descriptor, error) {
	e.cache.purge()

	elements, err := page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("fields: query elements: %w", err)
	}

	var (
		out    []*Descriptor
		radios = make(map[string]*Descriptor) // group name → group descriptor
		index  int
	)

	for start := 0; start < len(elements); start += e.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+e.cfg.BatchSize, len(elements))
		for _, el := range elements[start:end] {
			rec, ok := e.describe(ctx, el)
			if !ok {
				continue
			}

			kind, ok := classify(rec)
			if !ok || !accept(rec) {
				continue
			}

			if kind == KindRadioGroup {
				e.addRadioMember(radios, &out, rec, el, &index)
				continue
			}

			d := build(rec, kind, el, index)
			if d.SearchText() == "" {
				continue
			}
			d.Index = index
			index++
			out = append(out, d)
		}

		// Yield between batches so a large scan does not starve other work
		// on the scheduler.
		runtime.Gosched()
	}

	e.logger.Debug("fields: extracted", "elements", len(elements), "fields", len(out))
	return out, nil
}

// describe runs the cheap key pass, consults the cache, and falls back to
// the full describe.js evaluation on a miss.
func (e *Extractor) describe(ctx context.Context, el *rod.Element) (described, bool) {
	keyRes, err := el.Context(ctx).Eval(keyJS)
	if err != nil {
		return described{}, false
	}
	var k struct {
		Tag  string `json:"tag"`
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
		Cls  string `json:"cls"`
	}
	if err := json.Unmarshal([]byte(keyRes.Value.Str()), &k); err != nil {
		return described{}, false
	}

	key := cacheKey(k.Tag, k.Type, k.ID, k.Name, k.Cls)
	if cacheable(k.Type) {
		if rec, ok := e.cache.get(key); ok {
			return rec, true
		}
	}

	res, err := el.Context(ctx).Eval(describeJS)
	if err != nil {
		return described{}, false
	}
	var rec described
	if err := json.Unmarshal([]byte(res.Value.Str()), &rec); err != nil {
		e.logger.Warn("fields: describe decode failed", "error", err)
		return described{}, false
	}

	// Label candidates come straight from page content; flatten to text.
	labels := rec.Labels[:0]
	for _, l := range rec.Labels {
		if l = cleanLabel(l); l != "" {
			labels = append(labels, l)
		}
	}
	rec.Labels = labels
	if len(rec.Labels) == 0 {
		rec.Labels = containerText(rec.ContainerHTML)
	}
	rec.ContainerHTML = ""

	if cacheable(k.Type) {
		e.cache.put(key, rec)
	}
	return rec, true
}

// accept applies the rejection rules: disabled, read-only, invisible, opted
// out, and always password inputs (privacy floor).
func accept(rec described) bool {
	if rec.Type == "password" {
		return false
	}
	if rec.Disabled || rec.ReadOnly || rec.Skip || !rec.Visible {
		return false
	}
	return true
}

// classify maps tag/type to a field kind. Inputs without an explicit type
// are short-text by default.
func classify(rec described) (Kind, bool) {
	switch rec.Tag {
	case "textarea":
		return KindLongText, true
	case "select":
		return KindSelect, true
	case "input":
	default:
		return "", false
	}

	switch rec.Type {
	case "", "text", "search", "email", "tel", "url", "number":
		return KindShortText, true
	case "date":
		return KindDate, true
	case "radio":
		return KindRadioGroup, true
	case "checkbox":
		return KindCheckbox, true
	default:
		// hidden, submit, button, file, password, range, color, ...
		return "", false
	}
}

func build(rec described, kind Kind, el *rod.Element, index int) *Descriptor {
	d := &Descriptor{
		El:   el,
		Kind: kind,
		Attrs: map[string]string{
			"name":         rec.Name,
			"id":           rec.ID,
			"placeholder":  rec.Placeholder,
			"class":        rec.ClassName,
			"aria-label":   rec.AriaLabel,
			"autocomplete": rec.Autocomplete,
			"type":         rec.Type,
		},
		Labels:  append([]string(nil), rec.Labels...),
		Options: rec.Options,
		Index:   index,
	}
	d.computeSearchText()
	return d
}

// addRadioMember folds a radio input into its group descriptor, creating the
// group on first sight. Groups share the input's name attribute; unnamed
// radios group by id as a fallback.
func (e *Extractor) addRadioMember(groups map[string]*Descriptor, out *[]*Descriptor, rec described, el *rod.Element, index *int) {
	groupName := rec.Name
	if groupName == "" {
		groupName = rec.ID
	}
	if groupName == "" {
		return
	}

	member := Member{Value: rec.Value, El: el}
	if len(rec.Labels) > 0 {
		member.Text = rec.Labels[0]
	}

	if g, ok := groups[groupName]; ok {
		g.Members = append(g.Members, member)
		// Later members can contribute label text the first one lacked.
		g.Labels = append(g.Labels, rec.Labels...)
		g.computeSearchText()
		return
	}

	g := build(rec, KindRadioGroup, el, *index)
	g.Members = []Member{member}
	if g.SearchText() == "" {
		return
	}
	g.Index = *index
	*index++
	groups[groupName] = g
	*out = append(*out, g)
}
