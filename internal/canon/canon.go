// Package canon turns raw spreadsheet values into the canonical forms used
// for display and for reconciliation keys.
//
// Parse functions return the reason a value could not be read. The plain
// variants coerce failures to a zero value; callers that need to log a soft
// failure should use the Parse variants.
package canon

import "errors"

var (
	// ErrEmpty is returned for blank or missing values.
	ErrEmpty = errors.New("empty value")
	// ErrUnparseable is returned when no accepted format matches.
	ErrUnparseable = errors.New("unparseable value")
)
