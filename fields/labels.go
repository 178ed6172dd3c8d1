package fields

import (
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// labelPolicy strips every tag from label snippets coming back from the
// page. Labels are attacker-controlled page content; they must reduce to
// plain text before they feed the matcher.
var labelPolicy = bluemonday.StrictPolicy()

const maxLabelLen = 120

// cleanLabel reduces a raw label snippet to bounded plain text.
func cleanLabel(s string) string {
	s = labelPolicy.Sanitize(s)
	s = stdhtml.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}

// containerText pulls heading and description text out of a question
// container fragment (structured form builders wrap each question in a
// listitem with heading/description elements). Used as the last rung of the
// label ladder, when no closer label text was found.
func containerText(fragment string) []string {
	if fragment == "" {
		return nil
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var out []string
	push := func(s string) {
		s = cleanLabel(s)
		if s == "" {
			return
		}
		for _, have := range out {
			if have == s {
				return
			}
		}
		out = append(out, s)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isQuestionHeading(n) {
			push(nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func isQuestionHeading(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6", "legend":
		return true
	}
	var role, class string
	for _, a := range n.Attr {
		switch a.Key {
		case "role":
			role = a.Val
		case "class":
			class = strings.ToLower(a.Val)
		}
	}
	if role == "heading" {
		return true
	}
	for _, marker := range []string{"title", "heading", "description", "help", "hint"} {
		if strings.Contains(class, marker) {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
