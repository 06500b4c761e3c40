// Package htmldoc implements the document capability over static HTML parsed
// with golang.org/x/net/html. Values are the ones serialized in the markup
// (value attributes, textarea contents); styles are resolved from the
// user-agent defaults, <style> sheets and inline style attributes.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

// Document is a parsed HTML page.
type Document struct {
	root     *html.Node
	location string
	title    string

	elems  map[*html.Node]*element
	styler *styler
}

// Parse reads UTF-8 HTML from r.
func Parse(r io.Reader, location string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return newDocument(root, location), nil
}

// ParseBytes is Parse over an in-memory body.
func ParseBytes(body []byte, location string) (*Document, error) {
	return Parse(bytes.NewReader(body), location)
}

// ParseWithContentType decodes body according to the charset declared in
// contentType or sniffed from the markup before parsing.
func ParseWithContentType(body []byte, contentType, location string) (*Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	return Parse(r, location)
}

func newDocument(root *html.Node, location string) *Document {
	d := &Document{
		root:     root,
		location: location,
		elems:    make(map[*html.Node]*element),
	}
	d.title = strings.TrimSpace(findTitle(root))
	d.styler = newStyler(root)
	return d
}

func (d *Document) Location() string { return d.location }
func (d *Document) Title() string    { return d.title }

// Select walks the tree depth-first so results come back in document order.
func (d *Document) Select(pred func(dom.Element) bool) ([]dom.Element, error) {
	var out []dom.Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if el := d.wrap(n); pred(el) {
				out = append(out, el)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out, nil
}

// Query returns the elements matching a CSS selector group in document order.
func (d *Document) Query(selector string) ([]dom.Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	nodes := cascadia.QueryAll(d.root, sel)
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out, nil
}

// ComputedStyle resolves display and visibility for el.
func (d *Document) ComputedStyle(el dom.Element) (dom.Style, error) {
	e, ok := el.(*element)
	if !ok || e.doc != d {
		return dom.Style{}, dom.ErrForeignElement
	}
	return d.styler.computed(e.n), nil
}

func (d *Document) wrap(n *html.Node) *element {
	if e, ok := d.elems[n]; ok {
		return e
	}
	e := &element{n: n, doc: d}
	d.elems[n] = e
	return e
}

// element adapts an *html.Node to dom.Element.
type element struct {
	n   *html.Node
	doc *Document
}

func (e *element) Tag() string { return strings.ToLower(e.n.Data) }

func (e *element) Attr(name string) (string, bool) {
	return attr(e.n, name)
}

func (e *element) Parent() dom.Element {
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrap(p)
		}
	}
	return nil
}

func (e *element) Text() string {
	return innerText(e.n, e.doc.styler)
}

func (e *element) Value() string {
	switch e.n.DataAtom {
	case atom.Input:
		v, _ := attr(e.n, "value")
		return v
	case atom.Textarea:
		return textContent(e.n)
	}
	return ""
}

func (e *element) Editable() bool {
	v, ok := attr(e.n, "contenteditable")
	return dom.EditableAttr(v, ok)
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}
