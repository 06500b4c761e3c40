package export

import (
	"context"
	"errors"
)

// UserMessage is shown for any save failure other than a cancellation. It
// must stay distinct from the status messages for empty documents.
const UserMessage = "The file could not be saved. Please try again."

var (
	// ErrCancelled is returned when the user dismisses the save prompt.
	ErrCancelled = errors.New("save cancelled")
	// ErrSaveFailed matches every *SaveError through errors.Is.
	ErrSaveFailed = errors.New("save failed")
)

// SaveError wraps a failure to persist the artifact.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Path == "" {
		return "save: " + e.Err.Error()
	}
	return "save " + e.Path + ": " + e.Err.Error()
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSaveFailed }

// IsCancelled reports whether err is a user cancellation that callers should
// ignore silently.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
