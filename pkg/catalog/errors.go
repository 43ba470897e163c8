package catalog

import (
	"errors"
	"fmt"
)

// UpstreamErrorKind classifies an upstream API failure.
type UpstreamErrorKind string

// Upstream failure kinds. Every fault from the metadata API maps to exactly
// one of these; callers branch on Kind, never on error text.
const (
	UpstreamTimeout     UpstreamErrorKind = "timeout"
	UpstreamNotFound    UpstreamErrorKind = "not_found"
	UpstreamMalformed   UpstreamErrorKind = "malformed"
	UpstreamRateLimited UpstreamErrorKind = "rate_limited"
	UpstreamUnknown     UpstreamErrorKind = "unknown"
)

// UpstreamError reports a failed call against the metadata API. The client
// never returns partial data alongside an UpstreamError.
type UpstreamError struct {
	Kind   UpstreamErrorKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("upstream %s", e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by single-entity lookups when the upstream catalog
// has no entity with the requested ID. A well-formed empty result is not an
// upstream fault, so it is reported separately from UpstreamError.
var ErrNotFound = errors.New("catalog: entity not found")

// UpstreamKind extracts the failure kind from err, or UpstreamUnknown when
// err is not an UpstreamError.
func UpstreamKind(err error) UpstreamErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return UpstreamUnknown
}
