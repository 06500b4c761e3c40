package extract

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

// excludedInputTypes holds the input subtypes that never carry free text.
// Membership is tested on the normalized (lower-case) subtype; anything not
// listed here is treated as textual.
var excludedInputTypes = map[string]struct{}{
	"button":         {},
	"checkbox":       {},
	"color":          {},
	"date":           {},
	"datetime-local": {},
	"file":           {},
	"hidden":         {},
	"image":          {},
	"month":          {},
	"number":         {},
	"radio":          {},
	"range":          {},
	"reset":          {},
	"submit":         {},
	"time":           {},
	"week":           {},
}

// IsExcludedInputType reports whether subtype is non-textual.
func IsExcludedInputType(subtype string) bool {
	_, ok := excludedInputTypes[subtype]
	return ok
}

// rejection names the filter step that discarded a candidate.
type rejection string

const (
	keep          rejection = ""
	rejectSubtype rejection = "non-textual subtype"
	rejectDisable rejection = "disabled"
	rejectHidden  rejection = "not visible"
)

// isCandidate is the raw selection predicate: inputs, text areas and any
// element explicitly marked editable.
func isCandidate(el dom.Element) bool {
	return dom.KindOf(el) != dom.KindOther
}

// candidateSelector narrows the scan on documents that evaluate selectors
// natively; isCandidate still decides.
const candidateSelector = "input, textarea, [contenteditable]"

func candidates(doc dom.Document) ([]dom.Element, error) {
	q, ok := doc.(dom.Querier)
	if !ok {
		return doc.Select(isCandidate)
	}
	found, err := q.Query(candidateSelector)
	if err != nil {
		return nil, err
	}
	out := found[:0]
	for _, el := range found {
		if isCandidate(el) {
			out = append(out, el)
		}
	}
	return out, nil
}

// SelectFields returns the qualifying elements of doc in document order.
// An error is returned only when the document capability itself fails.
func SelectFields(doc dom.Document) ([]dom.Element, error) {
	raw, err := candidates(doc)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}
	out := make([]dom.Element, 0, len(raw))
	for _, el := range raw {
		why, err := filter(doc, el)
		if err != nil {
			return nil, err
		}
		if why != keep {
			log.Debug().Stringer("kind", dom.KindOf(el)).Str("id", dom.ID(el)).Str("reason", string(why)).Msg("skip field")
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

// filter applies the rejection rules in order and stops at the first match.
// The style lookup runs last since it is the most expensive read.
func filter(doc dom.Document, el dom.Element) (rejection, error) {
	if dom.KindOf(el) == dom.KindInput && IsExcludedInputType(dom.InputType(el)) {
		return rejectSubtype, nil
	}
	if dom.Disabled(el) {
		return rejectDisable, nil
	}
	st, err := doc.ComputedStyle(el)
	if err != nil {
		return keep, fmt.Errorf("computed style of <%s>: %w", el.Tag(), err)
	}
	if st.Hidden() {
		return rejectHidden, nil
	}
	return keep, nil
}
