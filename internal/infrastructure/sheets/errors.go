package sheets

import "errors"

// Sentinel errors for sheet operations.
var (
	// ErrAppendFailed indicates a row could not be written to the store.
	ErrAppendFailed = errors.New("sheets: append failed")

	// ErrNotOpen indicates the local sheet file is not open.
	ErrNotOpen = errors.New("sheets: not open")
)
