package htmldoc

import (
	"strings"
	"testing"
)

// BenchmarkParse measures parsing plus one full style resolution pass on
// representative form sizes.
func BenchmarkParse(b *testing.B) {
	small := []byte(`<html><head><title>t</title></head><body><input name="q"></body></html>`)
	medium := makeForm(20, 10)
	large := makeForm(200, 40)

	for _, tc := range []struct {
		name string
		body []byte
	}{{"small", small}, {"medium", medium}, {"large", large}} {
		b.Run(tc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				d, err := ParseBytes(tc.body, "bench")
				if err != nil {
					b.Fatal(err)
				}
				els, _ := d.Query("input, textarea, [contenteditable]")
				for _, el := range els {
					_, _ = d.ComputedStyle(el)
				}
			}
		})
	}
}

func makeForm(fields int, rules int) []byte {
	builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title><style>")
	for i := 0; i < rules; i++ {
		builder.WriteString(".r")
		builder.WriteString(strings.Repeat("x", i%7))
		builder.WriteString(" { display: block }\n")
	}
	builder.WriteString("</style></head><body><form>")
	for i := 0; i < fields; i++ {
		builder.WriteString(`<p><label>Field <input class="r" value="`)
		builder.WriteString(sampleText)
		builder.WriteString(`"></label></p><textarea>`)
		builder.WriteString(sampleText)
		builder.WriteString("</textarea>")
	}
	builder.WriteString("</form></body></html>")
	return []byte(builder.String())
}

const sampleText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."
