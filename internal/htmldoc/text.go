package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

// textContent concatenates every text node under n, untouched.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// innerText approximates the rendered text of n: markup that is never
// rendered is skipped, line breaks and block boundaries become newlines and
// whitespace inside a line collapses.
func innerText(n *html.Node, st *styler) string {
	var b strings.Builder
	collectText(&b, n, st, false, true)
	return normalizeWhitespace(b.String())
}

func collectText(b *strings.Builder, n *html.Node, st *styler, inPre, root bool) {
	name := ""
	if n.Type == html.ElementNode {
		name = strings.ToLower(n.Data)
		switch name {
		case "script", "style", "noscript", "template", "textarea", "select", "head", "title":
			return
		case "pre":
			inPre = true
		case "br":
			b.WriteString("\n")
		}
		if !root && st != nil && strings.EqualFold(st.computed(n).Display, "none") {
			return
		}
		if isBlock(name) {
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if inPre {
			data = strings.ReplaceAll(data, "\n", preBreak)
		} else {
			data = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(data)
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, st, inPre, false)
	}

	switch {
	case name == "p" || isHeading(name):
		b.WriteString("\n\n")
	case isBlock(name):
		b.WriteString("\n")
	}
}

// preBreak stands in for newlines inside <pre> until whitespace is
// normalized, since source newlines elsewhere are not rendered.
const preBreak = "\x00"

func isHeading(name string) bool {
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func isBlock(name string) bool {
	switch name {
	case "p", "div", "li", "ul", "ol", "pre", "blockquote", "section", "article",
		"header", "footer", "nav", "main", "aside", "form", "fieldset", "table",
		"tr", "dl", "dt", "dd", "figure", "figcaption", "address", "hr":
		return true
	}
	return isHeading(name)
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, preBreak, "\n")
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
