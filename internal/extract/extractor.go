package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

var (
	// ErrNoDocument is returned when there is no document to run against.
	ErrNoDocument = errors.New("no active document")
	// ErrSource marks failures to obtain the active document.
	ErrSource = errors.New("active document unavailable")
)

// Source yields the document that is active at invocation time.
type Source interface {
	Active(ctx context.Context) (dom.Document, error)
}

// Options tunes a run. The zero value uses the wall clock and the default
// label chain.
type Options struct {
	Now    func() time.Time
	Labels []LabelStrategy
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) labels() []LabelStrategy {
	if len(o.Labels) > 0 {
		return o.Labels
	}
	return DefaultLabelChain
}

// Run extracts labeled text from doc. It only reads from the document. Errors
// come from the document capability; degenerate documents are reported
// through EmptyFields and NoFields instead.
func Run(doc dom.Document, opts Options) (Result, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	fields, err := SelectFields(doc)
	if err != nil {
		return nil, err
	}
	chain := opts.labels()
	report := Report{Location: doc.Location(), Title: doc.Title()}
	for _, el := range fields {
		label, tier, err := ResolveLabel(doc, el, chain)
		if err != nil {
			return nil, fmt.Errorf("resolve label: %w", err)
		}
		if label == "" {
			log.Debug().Str("tag", el.Tag()).Msg("skip unlabeled field")
			continue
		}
		report.Relevant++
		value := strings.TrimSpace(readValue(el))
		log.Debug().Str("label", label).Str("tier", tier).Bool("empty", value == "").Msg("field")
		if value == "" {
			continue
		}
		report.Records = append(report.Records, Record{Label: label, Value: value})
	}
	report.GeneratedAt = opts.now()
	return classify(report), nil
}

// readValue reads editable regions through their rendered text and form
// controls through their value.
func readValue(el dom.Element) string {
	if dom.KindOf(el) == dom.KindEditable {
		return el.Text()
	}
	return el.Value()
}

// Extractor binds a Source so callers can trigger a run without arguments.
type Extractor struct {
	Source  Source
	Options Options
}

// Extract obtains the active document and runs the pipeline over it.
func (e *Extractor) Extract(ctx context.Context) (Result, error) {
	if e.Source == nil {
		return nil, ErrNoDocument
	}
	doc, err := e.Source.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	res, err := Run(doc, e.Options)
	if err != nil {
		return nil, err
	}
	log.Info().Str("location", doc.Location()).Str("status", string(res.Status())).Msg("extraction finished")
	return res, nil
}
