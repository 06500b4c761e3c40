package extract

import (
	"strings"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

// LabelStrategy resolves one tier of the label chain. An empty string means
// the tier had nothing to offer and the next one is tried.
type LabelStrategy struct {
	Name    string
	Resolve func(doc dom.Document, el dom.Element) (string, error)
}

// DefaultLabelChain is the fixed resolution order: an explicit <label for>,
// then an enclosing <label>, then the name/aria-label/placeholder attributes.
var DefaultLabelChain = []LabelStrategy{
	{Name: "for", Resolve: ForLabel},
	{Name: "wrapping", Resolve: WrappingLabel},
	{Name: "attribute", Resolve: AttributeLabel},
}

// ResolveLabel runs chain lazily and returns the first non-empty label with
// the name of the tier that produced it. Both are empty when the element is
// unlabeled.
func ResolveLabel(doc dom.Document, el dom.Element, chain []LabelStrategy) (string, string, error) {
	for _, s := range chain {
		label, err := s.Resolve(doc, el)
		if err != nil {
			return "", "", err
		}
		if label != "" {
			return label, s.Name, nil
		}
	}
	return "", "", nil
}

// ForLabel uses the first <label> whose for attribute names the element id.
func ForLabel(doc dom.Document, el dom.Element) (string, error) {
	id := dom.ID(el)
	if id == "" {
		return "", nil
	}
	labels, err := doc.Select(func(e dom.Element) bool {
		if e.Tag() != "label" {
			return false
		}
		target, ok := e.Attr("for")
		return ok && target == id
	})
	if err != nil || len(labels) == 0 {
		return "", err
	}
	return cleanLabel(labels[0].Text()), nil
}

// WrappingLabel uses the nearest enclosing <label>.
func WrappingLabel(_ dom.Document, el dom.Element) (string, error) {
	l := dom.Closest(el, "label")
	if l == nil {
		return "", nil
	}
	return cleanLabel(l.Text()), nil
}

// labelAttributes are consulted in priority order.
var labelAttributes = []string{"name", "aria-label", "placeholder"}

// AttributeLabel uses the first non-blank of name, aria-label, placeholder.
func AttributeLabel(_ dom.Document, el dom.Element) (string, error) {
	for _, a := range labelAttributes {
		if v, ok := el.Attr(a); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}
	return "", nil
}

// cleanLabel trims rendered label text and drops a trailing colon.
func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ":")
	return strings.TrimSpace(s)
}
