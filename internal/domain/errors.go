package domain

import (
	"errors"
	"fmt"
)

// Recommendation errors. Callers inspect them with errors.Is.
var (
	// ErrDataFormat indicates the corpus is missing required structure.
	ErrDataFormat = errors.New("data format error")

	// ErrModelBuild indicates a vector space could not be fitted.
	ErrModelBuild = errors.New("model build error")

	// ErrNotFound indicates the query title has no exact match in the corpus.
	ErrNotFound = errors.New("not found")

	// ErrLookup indicates live text search could not produce a usable query or candidates.
	ErrLookup = errors.New("lookup error")

	// ErrCache indicates a model cache read or write failed.
	// It is never returned from Ensure; failures degrade to a rebuild.
	ErrCache = errors.New("cache error")

	// ErrModelMismatch indicates a model whose rows do not line up with the corpus.
	ErrModelMismatch = errors.New("model does not match corpus")

	// Provider errors.

	// ErrPageNotFound indicates the provider has no page for a title.
	ErrPageNotFound = errors.New("page not found")

	// ErrAmbiguous indicates the title resolves to a disambiguation page.
	ErrAmbiguous = errors.New("ambiguous title")
)

// NotFoundError reports a title that matched no corpus row.
type NotFoundError struct {
	Title string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Movie '%s' not found", e.Title)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// LookupError reports a failed live-mode resolution.
type LookupError struct {
	Query  string
	Reason string
	Err    error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup %q: %s: %v", e.Query, e.Reason, e.Err)
	}
	return fmt.Sprintf("lookup %q: %s", e.Query, e.Reason)
}

// Unwrap exposes both ErrLookup and the provider error.
func (e *LookupError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLookup, e.Err}
	}
	return []error{ErrLookup}
}
