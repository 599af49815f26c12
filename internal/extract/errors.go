package extract

import "errors"

var (
	// ErrMalformedTimestamp is returned when a "Visited On" value does not
	// match the DD.MM.YYYY HH:MM:SS layout.
	ErrMalformedTimestamp = errors.New("malformed visit timestamp")

	// ErrIncompleteEntry is returned in strict mode when an entry lacks one
	// of the URL, Title or Visited On fields.
	ErrIncompleteEntry = errors.New("incomplete history entry")
)
