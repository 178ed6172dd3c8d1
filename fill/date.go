package fill

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hazyhaar/formfill/fields"
)

// parseLayouts are the accepted forms of a profile date value, tried in
// order. The canonical storage form is year-month-day.
var parseLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02.01.2006",
	"02-01-2006",
}

// datePattern recognizes hints like "dd/mm/yyyy", "MM-DD-YY" or
// "yyyy.mm.dd" in placeholders and labels.
var datePattern = regexp.MustCompile(`(?i)\b(d{1,2}|m{1,2}|y{2,4})([./-])(d{1,2}|m{1,2}|y{2,4})(?:([./-])(d{1,2}|m{1,2}|y{2,4}))?`)

// formatDate renders a profile date value for the destination field.
// Structured date inputs get the canonical year-month-day form; free-text
// fields get the locale pattern hinted at by the field's placeholder or
// labels, defaulting to day/month/year with "/".
func formatDate(value string, d *fields.Descriptor) (string, error) {
	t, err := parseDate(value)
	if err != nil {
		return "", err
	}

	if d.Kind == fields.KindDate {
		return t.Format("2006-01-02"), nil
	}

	order, sep, yearWidth := detectHint(hintText(d))
	year := "2006"
	if yearWidth == 2 {
		year = "06"
	}

	var parts []string
	for _, c := range order {
		switch c {
		case 'd':
			parts = append(parts, "02")
		case 'm':
			parts = append(parts, "01")
		case 'y':
			parts = append(parts, year)
		}
	}
	return t.Format(strings.Join(parts, sep)), nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fill: unparseable date %q", value)
}

func hintText(d *fields.Descriptor) string {
	parts := []string{d.Attrs["placeholder"], d.Attrs["name"], d.Attrs["aria-label"]}
	parts = append(parts, d.Labels...)
	return strings.ToLower(strings.Join(parts, " "))
}

// detectHint reads day/month/year ordering, separator, and year width out
// of a free-text hint. No hint means day/month/year with "/".
func detectHint(hint string) (order, sep string, yearWidth int) {
	order, sep, yearWidth = "dmy", "/", 4

	m := datePattern.FindStringSubmatch(hint)
	if m == nil {
		return order, sep, yearWidth
	}

	sep = m[2]
	groups := []string{m[1], m[3]}
	if m[5] != "" {
		groups = append(groups, m[5])
	}

	var b strings.Builder
	yearWidth = 0
	for _, g := range groups {
		switch g[0] {
		case 'd', 'D':
			b.WriteByte('d')
		case 'm', 'M':
			b.WriteByte('m')
		case 'y', 'Y':
			b.WriteByte('y')
			yearWidth = len(g)
		}
	}
	got := b.String()

	// A two-group hint like "dd/mm" still needs a year; append it.
	if !strings.Contains(got, "y") {
		got += "y"
	}
	if yearWidth != 2 {
		yearWidth = 4
	}
	// Degenerate hints (e.g. "dd/dd") fall back to the default order.
	if !valid(got) {
		return "dmy", sep, yearWidth
	}
	return got, sep, yearWidth
}

func valid(order string) bool {
	return len(order) == 3 &&
		strings.Count(order, "d") == 1 &&
		strings.Count(order, "m") == 1 &&
		strings.Count(order, "y") == 1
}
