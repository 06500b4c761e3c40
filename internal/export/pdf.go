package export

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/fieldtext/internal/extract"
)

// writePDF renders a payload as a simple A4 document: header lines as plain
// text, the separator as a rule, record labels in bold and values as
// wrapped paragraphs. Text goes through the cp1252 translator of the core
// fonts, so characters outside that code page degrade.
func writePDF(payload string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		s := strings.TrimRight(line, " \t\r")
		switch {
		case s == "":
			pdf.Ln(4)
		case strings.TrimSpace(s) == extract.Separator:
			x, y := pdf.GetXY()
			w, _ := pdf.GetPageSize()
			l, _, r, _ := pdf.GetMargins()
			pdf.Line(x, y+2, w-r, y+2)
			pdf.SetXY(l, y+4)
		case isLabelLine(s):
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(0, 6, tr(s), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		default:
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}

func isLabelLine(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]:")
}
