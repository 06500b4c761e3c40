package dom

import "errors"

// ErrForeignElement is returned when an element from one document is passed
// to another document's capability.
var ErrForeignElement = errors.New("element does not belong to this document")
