package app

import (
	"errors"

	"github.com/hyperifyio/fieldtext/internal/browser"
	"github.com/hyperifyio/fieldtext/internal/export"
	"github.com/hyperifyio/fieldtext/internal/extract"
)

// Short messages shown to the user for each outcome.
const (
	MsgSaving      = "Saving extracted text..."
	MsgEmptyFields = "Found input fields, but they are all empty."
	MsgNoFields    = "No supported input fields were found on this page."
	MsgCannotRun   = "Cannot run on this page."
	MsgUnexpected  = "An unexpected error occurred."
	MsgSaveFailed  = export.UserMessage
)

// StatusMessage returns the message for a non-success result, or "" for
// Success, which is reported through the save flow instead.
func StatusMessage(res extract.Result) string {
	switch res.(type) {
	case extract.EmptyFields:
		return MsgEmptyFields
	case extract.NoFields:
		return MsgNoFields
	}
	return ""
}

// ErrorMessage maps a failed run onto a non-technical message. Cancelled
// saves have no message.
func ErrorMessage(err error) string {
	switch {
	case err == nil, export.IsCancelled(err):
		return ""
	case errors.Is(err, export.ErrSaveFailed):
		return MsgSaveFailed
	case errors.Is(err, browser.ErrProtectedPage), errors.Is(err, extract.ErrSource):
		return MsgCannotRun
	}
	return MsgUnexpected
}
