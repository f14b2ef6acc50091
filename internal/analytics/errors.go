package analytics

import "errors"

// Failure taxonomy of the engine. Every failure is terminal for the single
// report being computed.
var (
	// ErrUnresolvedReference: a record's category cannot be found.
	ErrUnresolvedReference = errors.New("unresolved category reference")
	// ErrInvalidParameter: a window parameter is out of domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUpstreamQuery: the record source failed to return data.
	ErrUpstreamQuery = errors.New("upstream query failure")
	// ErrUnknownReport: the report type discriminator is not recognized.
	ErrUnknownReport = errors.New("unknown report type")
)
