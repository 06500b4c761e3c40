package extract

import (
	"testing"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

func TestSelectFields_OrderAndFilter(t *testing.T) {
	doc := parseHTML(t, `<body>
		<input id="a">
		<input id="b" type="checkbox">
		<textarea id="c"></textarea>
		<input id="d" disabled>
		<div id="e" contenteditable="true"><span contenteditable="false" id="f">x</span></div>
		<input id="g" style="visibility:hidden">
		<input id="h" type="search">
	</body>`)
	fields, err := SelectFields(doc)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var ids string
	for _, el := range fields {
		ids += dom.ID(el)
	}
	if ids != "aceh" {
		t.Fatalf("fields = %q, want aceh", ids)
	}
}

func TestSelectFields_TreeWithoutQuerier(t *testing.T) {
	doc := tree(
		dom.El("div").Append(dom.El("input", "id", "a")),
		dom.El("div", "contenteditable", "false", "id", "b"),
		dom.El("input", "id", "c", "type", "image"),
		dom.El("textarea", "id", "d").WithStyle("NONE", ""),
		dom.El("section", "contenteditable", "plaintext-only", "id", "e"),
	)
	fields, err := SelectFields(doc)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var ids string
	for _, el := range fields {
		ids += dom.ID(el)
	}
	if ids != "ae" {
		t.Fatalf("fields = %q, want ae", ids)
	}
}

func TestFilter_RejectionOrder(t *testing.T) {
	doc := tree()
	cases := []struct {
		el   *dom.Node
		want rejection
	}{
		{dom.El("input", "type", "checkbox", "disabled", "").WithStyle("none", ""), rejectSubtype},
		{dom.El("input", "disabled", "").WithStyle("none", ""), rejectDisable},
		{dom.El("textarea").WithStyle("", "Hidden"), rejectHidden},
		{dom.El("input", "type", "email"), keep},
	}
	for i, tc := range cases {
		got, err := filter(doc, tc.el)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestIsExcludedInputType(t *testing.T) {
	for _, typ := range []string{"button", "checkbox", "color", "date", "datetime-local", "file", "hidden", "image", "month", "number", "radio", "range", "reset", "submit", "time", "week"} {
		if !IsExcludedInputType(typ) {
			t.Fatalf("%s should be excluded", typ)
		}
	}
	for _, typ := range []string{"text", "email", "password", "search", "tel", "url", "Checkbox"} {
		if IsExcludedInputType(typ) {
			t.Fatalf("%s should not be excluded", typ)
		}
	}
}
