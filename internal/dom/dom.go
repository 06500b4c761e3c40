// Package dom describes the read-only view of a displayed document that the
// extraction engine works against. Backends (static HTML, live browser
// snapshots, synthetic test trees) implement Document and Element; nothing in
// this package mutates a document.
package dom

import "strings"

// Kind classifies an element for extraction purposes.
type Kind int

const (
	KindOther Kind = iota
	// KindInput is a generic <input> element.
	KindInput
	// KindTextArea is a multi-line <textarea>.
	KindTextArea
	// KindEditable is any element explicitly marked contenteditable.
	KindEditable
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTextArea:
		return "textarea"
	case KindEditable:
		return "editable"
	default:
		return "other"
	}
}

// Style carries the computed style properties the engine cares about.
type Style struct {
	Display    string
	Visibility string
}

// Hidden reports whether the style makes the element invisible to a user.
func (s Style) Hidden() bool {
	return strings.EqualFold(s.Display, "none") || strings.EqualFold(s.Visibility, "hidden")
}

// Element is one node of a document.
type Element interface {
	// Tag returns the lower-case tag name.
	Tag() string
	Attr(name string) (string, bool)
	// Parent returns the enclosing element or nil at the root.
	Parent() Element
	// Text returns the rendered inner text.
	Text() string
	// Value returns the current value of a form control.
	Value() string
	// Editable reports whether the element is explicitly marked editable.
	Editable() bool
}

// Document is the tree-query capability over the active document.
type Document interface {
	// Location is the originating location reference (URL or path).
	Location() string
	Title() string
	// Select returns every element matching pred in document order.
	Select(pred func(Element) bool) ([]Element, error)
	// ComputedStyle resolves the style of el. It must not mutate the document.
	ComputedStyle(el Element) (Style, error)
}

// Querier is implemented by documents that can evaluate CSS selectors
// natively. Results must be in document order.
type Querier interface {
	Query(selector string) ([]Element, error)
}

// KindOf classifies el.
func KindOf(el Element) Kind {
	if el == nil {
		return KindOther
	}
	switch el.Tag() {
	case "input":
		return KindInput
	case "textarea":
		return KindTextArea
	}
	if el.Editable() {
		return KindEditable
	}
	return KindOther
}

// InputType returns the normalized subtype of an input element. Missing or
// blank type attributes normalize to "text".
func InputType(el Element) string {
	v, ok := el.Attr("type")
	v = strings.ToLower(strings.TrimSpace(v))
	if !ok || v == "" {
		return "text"
	}
	return v
}

// Disabled reports the disabled flag. Only form controls carry one.
func Disabled(el Element) bool {
	switch el.Tag() {
	case "input", "textarea":
		_, ok := el.Attr("disabled")
		return ok
	}
	return false
}

// ID returns the element identifier or "".
func ID(el Element) string {
	v, _ := el.Attr("id")
	return v
}

// Closest walks from el up through its ancestors and returns the first
// element with the given tag.
func Closest(el Element, tag string) Element {
	for p := el; p != nil; p = p.Parent() {
		if p.Tag() == tag {
			return p
		}
	}
	return nil
}

// EditableAttr interprets a contenteditable attribute value.
func EditableAttr(v string, present bool) bool {
	if !present {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "true", "plaintext-only":
		return true
	}
	return false
}
