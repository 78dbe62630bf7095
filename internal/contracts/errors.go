package contracts

import "errors"

var (
	// ErrNotFound is returned by collaborators when a symbol has no record
	ErrNotFound = errors.New("metrics not found")

	// ErrInvalidModel is returned for an unknown valuation model name
	ErrInvalidModel = errors.New("invalid valuation model")

	// ErrNotApplicable is returned when value analysis does not apply (ETFs)
	ErrNotApplicable = errors.New("value analysis not applicable")

	// ErrNoSources is returned when every metrics source failed
	ErrNoSources = errors.New("no metrics source succeeded")
)

// ErrInvalidSymbol is returned for a ticker that cannot be a file or URL segment
var ErrInvalidSymbol = errors.New("invalid symbol")
