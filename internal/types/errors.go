package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrNoSites       = errors.New("no sites configured")
	ErrEmptyDocument = errors.New("empty document")
)

// ConfigurationError reports a missing or invalid external credential.
// It is logged as a warning at startup and only fails the call that
// depends on the credential.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// NavigationError wraps page fetch and navigation timeout failures.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError wraps selector and DOM parse failures. It triggers the
// AI fallback rather than surfacing to the caller.
type ExtractionError struct {
	Source   string
	Selector string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error for %s (selector=%q): %v", e.Source, e.Selector, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelResponseError reports AI output that was not valid JSON or had the
// wrong shape.
type ModelResponseError struct {
	Provider string
	Err      error
}

func (e *ModelResponseError) Error() string {
	return fmt.Sprintf("model response error (%s): %v", e.Provider, e.Err)
}

func (e *ModelResponseError) Unwrap() error { return e.Err }

// StoreError wraps database operation failures. It is propagated to the
// caller of the triggering endpoint as a failure response.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
