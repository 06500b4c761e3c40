package extract

import (
	"strings"
	"time"
)

// Status names the active tag of a Result.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusEmptyFields Status = "empty_fields"
	StatusNoFields    Status = "no_fields"
)

// Result is the outcome of one extraction run. Exactly one of Success,
// EmptyFields or NoFields is returned; the set is closed.
type Result interface {
	Status() Status
	isResult()
}

// Success carries the rendered payload and the report it came from.
type Success struct {
	Text   string
	Report Report
}

// EmptyFields means labeled fields exist but none of them hold text.
type EmptyFields struct {
	Relevant int
}

// NoFields means the document has no eligible labeled field at all.
type NoFields struct{}

func (Success) Status() Status     { return StatusSuccess }
func (EmptyFields) Status() Status { return StatusEmptyFields }
func (NoFields) Status() Status    { return StatusNoFields }

func (Success) isResult()     {}
func (EmptyFields) isResult() {}
func (NoFields) isResult()    {}

// Separator follows the header of every report.
const Separator = "========================================"

// dateLayout mirrors the en-US locale string of a browser clock.
const dateLayout = "1/2/2006, 3:04:05 PM"

// Record is one (label, trimmed value) pair.
type Record struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// String renders the record as a bracketed label line, the value and a
// blank separator line.
func (r Record) String() string {
	return "[" + r.Label + "]:\n" + r.Value + "\n\n"
}

// Report is the ordered set of records gathered from one document.
type Report struct {
	Location    string    `json:"location"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     []Record  `json:"records"`
	// Relevant counts labeled qualifying fields, empty or not.
	Relevant int `json:"relevant"`
}

// Header renders the source location and timestamp block.
func (r Report) Header() string {
	var b strings.Builder
	b.WriteString("Extracted from: ")
	b.WriteString(r.Location)
	b.WriteString("\nDate: ")
	b.WriteString(r.GeneratedAt.Format(dateLayout))
	b.WriteString("\n\n")
	b.WriteString(Separator)
	b.WriteString("\n\n")
	return b.String()
}

// Body concatenates the rendered records.
func (r Report) Body() string {
	var b strings.Builder
	for _, rec := range r.Records {
		b.WriteString(rec.String())
	}
	return b.String()
}

// String renders the full payload.
func (r Report) String() string {
	return r.Header() + r.Body()
}

// classify maps an aggregated report onto a Result.
func classify(r Report) Result {
	switch {
	case len(r.Records) > 0:
		return Success{Text: r.String(), Report: r}
	case r.Relevant > 0:
		return EmptyFields{Relevant: r.Relevant}
	default:
		return NoFields{}
	}
}
