package htmldoc

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	cssparser "github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

// Only the two properties that decide visibility take part in the cascade.
const (
	propDisplay    = "display"
	propVisibility = "visibility"
)

// styleRule is one selector of an author rule with its declarations.
type styleRule struct {
	sel   cascadia.Sel
	order int
	decls []*css.Declaration
}

// styler resolves computed display and visibility for nodes of one tree.
// Results are memoized; the tree is never modified.
type styler struct {
	rules []styleRule
	memo  map[*html.Node]dom.Style
}

func newStyler(root *html.Node) *styler {
	s := &styler{memo: make(map[*html.Node]dom.Style)}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "style") && screenMedia(n) {
			s.addSheet(textContent(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return s
}

// screenMedia drops <style media="print"> sheets.
func screenMedia(n *html.Node) bool {
	m, ok := attr(n, "media")
	if !ok {
		return true
	}
	m = strings.ToLower(m)
	return !strings.Contains(m, "print") || strings.Contains(m, "screen") || strings.Contains(m, "all")
}

func (s *styler) addSheet(text string) {
	sheet, err := cssparser.Parse(text)
	if err != nil {
		return
	}
	s.addRules(sheet.Rules)
}

func (s *styler) addRules(rules []*css.Rule) {
	for _, r := range rules {
		switch r.Kind {
		case css.QualifiedRule:
			decls := relevantDecls(r.Declarations)
			if len(decls) == 0 {
				continue
			}
			for _, raw := range r.Selectors {
				sel, err := cascadia.Parse(raw)
				if err != nil {
					continue
				}
				s.rules = append(s.rules, styleRule{sel: sel, order: len(s.rules), decls: decls})
			}
		case css.AtRule:
			if r.Name == "@media" && !strings.Contains(strings.ToLower(r.Prelude), "print") {
				s.addRules(r.Rules)
			}
		}
	}
}

func relevantDecls(decls []*css.Declaration) []*css.Declaration {
	var out []*css.Declaration
	for _, d := range decls {
		switch strings.ToLower(strings.TrimSpace(d.Property)) {
		case propDisplay, propVisibility:
			out = append(out, d)
		}
	}
	return out
}

// candidate is one declared value competing in the cascade.
type candidate struct {
	value       string
	important   bool
	inline      bool
	specificity cascadia.Specificity
	order       int
}

func (c candidate) beats(o candidate) bool {
	if c.important != o.important {
		return c.important
	}
	if c.inline != o.inline {
		return c.inline
	}
	if c.specificity != o.specificity {
		return o.specificity.Less(c.specificity)
	}
	return c.order > o.order
}

func (s *styler) computed(n *html.Node) dom.Style {
	if n == nil || n.Type != html.ElementNode {
		return dom.Style{Display: "inline", Visibility: "visible"}
	}
	if st, ok := s.memo[n]; ok {
		return st
	}
	won := map[string]candidate{}
	offer := func(c candidate, prop string) {
		if cur, ok := won[prop]; !ok || c.beats(cur) {
			won[prop] = c
		}
	}
	for _, r := range s.rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, d := range r.decls {
			offer(candidate{value: d.Value, important: d.Important, specificity: r.sel.Specificity(), order: r.order}, strings.ToLower(strings.TrimSpace(d.Property)))
		}
	}
	if raw, ok := attr(n, "style"); ok {
		if decls, err := cssparser.ParseDeclarations(raw); err == nil {
			for i, d := range relevantDecls(decls) {
				offer(candidate{value: d.Value, important: d.Important, inline: true, order: i}, strings.ToLower(strings.TrimSpace(d.Property)))
			}
		}
	}

	parent := s.parentStyle(n)
	st := dom.Style{
		Display:    resolveDisplay(n, won, parent),
		Visibility: resolveVisibility(won, parent),
	}
	s.memo[n] = st
	return st
}

func (s *styler) parentStyle(n *html.Node) dom.Style {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return s.computed(p)
		}
	}
	return dom.Style{Display: "block", Visibility: "visible"}
}

func keyword(c candidate) string {
	v := strings.ToLower(strings.TrimSpace(c.value))
	return strings.TrimSpace(strings.TrimSuffix(v, "!important"))
}

// resolveDisplay does not inherit: a child of a display:none element keeps
// its own computed display, as getComputedStyle reports it.
func resolveDisplay(n *html.Node, won map[string]candidate, parent dom.Style) string {
	def := defaultDisplay(n)
	c, ok := won[propDisplay]
	if !ok {
		return def
	}
	switch v := keyword(c); v {
	case "", "revert", "revert-layer":
		return def
	case "inherit":
		return parent.Display
	case "initial", "unset":
		return "inline"
	default:
		return v
	}
}

// resolveVisibility inherits from the parent unless declared.
func resolveVisibility(won map[string]candidate, parent dom.Style) string {
	c, ok := won[propVisibility]
	if !ok {
		return parent.Visibility
	}
	switch v := keyword(c); v {
	case "", "inherit", "unset", "revert", "revert-layer":
		return parent.Visibility
	case "initial":
		return "visible"
	default:
		return v
	}
}

// defaultDisplay is the user-agent display of n.
func defaultDisplay(n *html.Node) string {
	if _, ok := attr(n, "hidden"); ok {
		return "none"
	}
	switch strings.ToLower(n.Data) {
	case "head", "script", "style", "template", "title", "meta", "link", "base", "noscript":
		return "none"
	case "input":
		if t, _ := attr(n, "type"); strings.EqualFold(strings.TrimSpace(t), "hidden") {
			return "none"
		}
		return "inline-block"
	case "textarea", "select", "button":
		return "inline-block"
	case "li":
		return "list-item"
	case "table":
		return "table"
	}
	if isBlock(strings.ToLower(n.Data)) || strings.EqualFold(n.Data, "html") || strings.EqualFold(n.Data, "body") {
		return "block"
	}
	return "inline"
}
