package extract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/fieldtext/internal/dom"
	"github.com/hyperifyio/fieldtext/internal/htmldoc"
)

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func fixedOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

func tree(children ...*dom.Node) *dom.Tree {
	return dom.NewTree("https://example.com/form", "Form", dom.El("body").Append(children...))
}

func parseHTML(t *testing.T, src string) dom.Document {
	t.Helper()
	d, err := htmldoc.Parse(strings.NewReader(src), "https://example.com/page")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func run(t *testing.T, doc dom.Document) Result {
	t.Helper()
	res, err := Run(doc, fixedOptions())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

// styleErrDoc fails every computed style lookup.
type styleErrDoc struct {
	*dom.Tree
}

var errStyle = errors.New("style unavailable")

func (styleErrDoc) ComputedStyle(dom.Element) (dom.Style, error) {
	return dom.Style{}, errStyle
}
