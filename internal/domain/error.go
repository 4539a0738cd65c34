package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStoreUnavailable = errors.New("operation store unavailable")
	ErrTerminalState    = errors.New("job already in terminal state")

	// Upstream provider errors. The stage-specific sentinel is always the
	// outermost wrap so callers can map a failure to the right job message.
	ErrUpstreamSubmission = errors.New("upstream submission failed")
	ErrUpstreamPoll       = errors.New("upstream poll failed")
	ErrUpstreamFetch      = errors.New("upstream fetch failed")

	ErrGenerationTimeout = errors.New("video generation timed out")
)
