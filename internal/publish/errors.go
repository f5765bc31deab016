package publish

import "errors"

// Sentinel errors for publish operations.
var (
	// ErrPublishFailed indicates a backend rejected or never received a
	// snapshot after the retry budget was spent.
	ErrPublishFailed = errors.New("publish: failed")

	// ErrNothingToPublish indicates the snapshot carried no data newer
	// than what the backend already has; the dispatch is a no-op, not a
	// failure.
	ErrNothingToPublish = errors.New("publish: nothing to publish")
)
