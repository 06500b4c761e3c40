package htmldoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(src), "https://example.com/form")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func byID(t *testing.T, d *Document, id string) dom.Element {
	t.Helper()
	els, err := d.Query("#" + id)
	if err != nil {
		t.Fatalf("query #%s: %v", id, err)
	}
	if len(els) != 1 {
		t.Fatalf("expected one #%s, got %d", id, len(els))
	}
	return els[0]
}

func TestParse_TitleAndLocation(t *testing.T) {
	d := mustParse(t, `<!doctype html><html><head><title>  Contact us </title></head><body></body></html>`)
	if d.Title() != "Contact us" {
		t.Fatalf("title = %q", d.Title())
	}
	if d.Location() != "https://example.com/form" {
		t.Fatalf("location = %q", d.Location())
	}
}

func TestQuery_DocumentOrder(t *testing.T) {
	d := mustParse(t, `<body>
		<textarea id="c"></textarea>
		<div><input id="a"></div>
		<p contenteditable id="b">x</p>
	</body>`)
	els, err := d.Query("input, textarea, [contenteditable]")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var ids []string
	for _, el := range els {
		ids = append(ids, dom.ID(el))
	}
	if got := strings.Join(ids, ","); got != "c,a,b" {
		t.Fatalf("order = %s, want c,a,b", got)
	}
}

func TestSelect_MatchesQuery(t *testing.T) {
	d := mustParse(t, `<body><input id="a"><span><input id="b"></span></body>`)
	els, err := d.Select(func(el dom.Element) bool { return el.Tag() == "input" })
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(els) != 2 || dom.ID(els[0]) != "a" || dom.ID(els[1]) != "b" {
		t.Fatalf("unexpected selection: %d elements", len(els))
	}
	if els[0] != byID(t, d, "a") {
		t.Fatalf("expected the same wrapper for the same node")
	}
}

func TestElement_ValueAndParent(t *testing.T) {
	d := mustParse(t, `<body><form id="f"><INPUT ID="q" Value="hello"><textarea id="t">draft text</textarea></form></body>`)
	q := byID(t, d, "q")
	if q.Tag() != "input" {
		t.Fatalf("tag = %q", q.Tag())
	}
	if q.Value() != "hello" {
		t.Fatalf("input value = %q", q.Value())
	}
	if v := byID(t, d, "t").Value(); v != "draft text" {
		t.Fatalf("textarea value = %q", v)
	}
	if p := q.Parent(); p == nil || dom.ID(p) != "f" {
		t.Fatalf("expected form parent")
	}
	html := dom.Closest(q, "html")
	if html == nil || html.Parent() != nil {
		t.Fatalf("expected html element at the root")
	}
}

func TestElement_Editable(t *testing.T) {
	d := mustParse(t, `<body>
		<div id="a" contenteditable></div>
		<div id="b" contenteditable="TRUE"></div>
		<div id="c" contenteditable="plaintext-only"></div>
		<div id="d" contenteditable="false"></div>
		<div id="e"></div>
	</body>`)
	want := map[string]bool{"a": true, "b": true, "c": true, "d": false, "e": false}
	for id, w := range want {
		if got := byID(t, d, id).Editable(); got != w {
			t.Fatalf("#%s editable = %v, want %v", id, got, w)
		}
	}
}

func TestInnerText(t *testing.T) {
	d := mustParse(t, `<body>
		<label id="l">  Name <b>first</b><span style="display:none">secret</span>:
			<input id="n"></label>
		<div id="e" contenteditable>line one<br>line   two<script>var x;</script><p>para</p></div>
		<div id="pre" contenteditable><pre>a
b</pre></div>
	</body>`)
	if got := byID(t, d, "l").Text(); got != "Name first:" {
		t.Fatalf("label text = %q", got)
	}
	if got := byID(t, d, "e").Text(); got != "line one\nline two\npara" {
		t.Fatalf("editable text = %q", got)
	}
	if got := byID(t, d, "pre").Text(); got != "a\nb" {
		t.Fatalf("pre text = %q", got)
	}
}

func TestComputedStyle_Cascade(t *testing.T) {
	d := mustParse(t, `<html><head><style>
		.gone { display: none }
		#a { display: none }
		.c { display: block }
		input.late { display: none }
		input.late { display: inline }
		.forced { display: none !important }
		@media print { #p { display: none } }
		@media screen { #s { visibility: hidden } }
	</style><style media="print">#m { display: none }</style></head><body>
		<input id="inline" style="display: none">
		<input id="cls" class="gone">
		<input id="a" class="c">
		<input id="late" class="late">
		<input id="forced" class="forced" style="display:block">
		<input id="p">
		<input id="s">
		<input id="m">
		<input id="attr" hidden>
		<input id="typ" type="HIDDEN">
		<input id="plain">
	</body></html>`)
	cases := map[string]bool{
		"inline": true,
		"cls":    true,
		"a":      true,
		"late":   false,
		"forced": true,
		"p":      false,
		"s":      true,
		"m":      false,
		"attr":   true,
		"typ":    true,
		"plain":  false,
	}
	for id, hidden := range cases {
		st, err := d.ComputedStyle(byID(t, d, id))
		if err != nil {
			t.Fatalf("style #%s: %v", id, err)
		}
		if st.Hidden() != hidden {
			t.Fatalf("#%s hidden = %v (%+v), want %v", id, st.Hidden(), st, hidden)
		}
	}
}

func TestComputedStyle_Inheritance(t *testing.T) {
	d := mustParse(t, `<body>
		<div style="visibility:hidden"><span><input id="v"></span><input id="back" style="visibility: visible"></div>
		<div style="display:none"><input id="d"></div>
	</body>`)
	st, _ := d.ComputedStyle(byID(t, d, "v"))
	if st.Visibility != "hidden" {
		t.Fatalf("expected inherited hidden visibility, got %+v", st)
	}
	st, _ = d.ComputedStyle(byID(t, d, "back"))
	if st.Visibility != "visible" {
		t.Fatalf("expected visible override, got %+v", st)
	}
	// display is not inherited: the input keeps its own value.
	st, _ = d.ComputedStyle(byID(t, d, "d"))
	if st.Display != "inline-block" {
		t.Fatalf("expected own display, got %+v", st)
	}
}

func TestComputedStyle_ForeignElement(t *testing.T) {
	d := mustParse(t, `<body><input id="a"></body>`)
	other := mustParse(t, `<body><input id="a"></body>`)
	if _, err := d.ComputedStyle(byID(t, other, "a")); !errors.Is(err, dom.ErrForeignElement) {
		t.Fatalf("expected ErrForeignElement, got %v", err)
	}
	if _, err := d.ComputedStyle(dom.El("input")); !errors.Is(err, dom.ErrForeignElement) {
		t.Fatalf("expected ErrForeignElement for a synthetic node, got %v", err)
	}
}

func TestParseWithContentType_Charset(t *testing.T) {
	body := []byte("<body><input id=\"q\" value=\"caf\xe9\"></body>")
	d, err := ParseWithContentType(body, "text/html; charset=iso-8859-1", "https://example.com")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := byID(t, d, "q").Value(); v != "café" {
		t.Fatalf("value = %q", v)
	}
}
