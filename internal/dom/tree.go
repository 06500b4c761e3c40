package dom

import "strings"

// Node is an in-memory element. Browser snapshots decode into Nodes, and
// tests build synthetic documents from them.
type Node struct {
	TagName    string            `json:"tag"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	InnerText  string            `json:"text,omitempty"`
	CurValue   string            `json:"value,omitempty"`
	IsEditable bool              `json:"editable,omitempty"`
	Style      Style             `json:"style"`
	Children   []*Node           `json:"-"`

	parent *Node
}

// El builds a node with attributes given as key/value pairs.
func El(tag string, kv ...string) *Node {
	n := &Node{TagName: strings.ToLower(tag), Attrs: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attrs[kv[i]] = kv[i+1]
	}
	if v, ok := n.Attrs["contenteditable"]; ok {
		n.IsEditable = EditableAttr(v, true)
	}
	if v, ok := n.Attrs["value"]; ok {
		n.CurValue = v
	}
	return n
}

// Append adds children and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// WithText sets the rendered inner text.
func (n *Node) WithText(s string) *Node { n.InnerText = s; return n }

// WithValue sets the current value.
func (n *Node) WithValue(s string) *Node { n.CurValue = s; return n }

// WithStyle sets the computed style.
func (n *Node) WithStyle(display, visibility string) *Node {
	n.Style = Style{Display: display, Visibility: visibility}
	return n
}

func (n *Node) Tag() string { return n.TagName }

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Text() string  { return n.InnerText }
func (n *Node) Value() string { return n.CurValue }

func (n *Node) Editable() bool { return n.IsEditable }

// Tree is a Document backed by Nodes whose styles are already computed.
type Tree struct {
	URL       string
	PageTitle string
	Root      *Node
}

// NewTree wraps root as a document.
func NewTree(url, title string, root *Node) *Tree {
	return &Tree{URL: url, PageTitle: title, Root: root}
}

func (t *Tree) Location() string { return t.URL }
func (t *Tree) Title() string    { return t.PageTitle }

func (t *Tree) Select(pred func(Element) bool) ([]Element, error) {
	var out []Element
	var walk func(*Node)
	walk = func(n *Node) {
		if pred(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return out, nil
}

func (t *Tree) ComputedStyle(el Element) (Style, error) {
	n, ok := el.(*Node)
	if !ok {
		return Style{}, ErrForeignElement
	}
	return n.Style, nil
}
