package scraper

import (
	"errors"
	"fmt"
)

// NotFoundError means the source answered but has no record for the
// identifier. It is an absent result, not a failure: the orchestrator
// drops it from the per-source map silently.
type NotFoundError struct {
	Source string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no result for %s", e.Source, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ParseError means the source returned a successful response the adapter
// could not interpret. Non-retryable; surfaces as a per-source failure
// without aborting sibling lookups.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
