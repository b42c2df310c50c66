package models

import (
	"errors"
	"fmt"
)

// Error classes. Every backend or provider failure is mapped onto one of
// these before it crosses a component boundary, so callers can decide
// retry/default behavior with errors.Is alone.
var (
	// ErrValidation marks a missing or malformed argument. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an entity or window with no data. Many call sites
	// substitute documented defaults instead of surfacing it.
	ErrNotFound = errors.New("not found")

	// ErrProvider marks an unavailable collaborator (embedding service or
	// backend store). Retry is the caller's decision.
	ErrProvider = errors.New("provider unavailable")
)

// Entity-specific not-found sentinels, all matching ErrNotFound.
var (
	ErrItemNotFound = fmt.Errorf("knowledge item %w", ErrNotFound)
	ErrNodeNotFound = fmt.Errorf("node %w", ErrNotFound)
	ErrEdgeNotFound = fmt.Errorf("edge %w", ErrNotFound)
	ErrSeriesEmpty  = fmt.Errorf("metric series %w", ErrNotFound)
)

// Validation sentinels for required fields.
var (
	ErrMissingText      = fmt.Errorf("%w: text is required", ErrValidation)
	ErrMissingEmbedding = fmt.Errorf("%w: embedding is required", ErrValidation)
	ErrMissingType      = fmt.Errorf("%w: type is required", ErrValidation)
	ErrMissingName      = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingSource    = fmt.Errorf("%w: source node is required", ErrValidation)
	ErrMissingTarget    = fmt.Errorf("%w: target node is required", ErrValidation)
	ErrMissingRelation  = fmt.Errorf("%w: relation is required", ErrValidation)
	ErrMissingMetricID  = fmt.Errorf("%w: metric id is required", ErrValidation)
)

// Validationf builds a field-specific validation error that matches
// ErrValidation under errors.Is.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Providerf wraps a collaborator failure so it matches ErrProvider.
func Providerf(err error, op string) error {
	return fmt.Errorf("%w: %s: %v", ErrProvider, op, err)
}

// ConsistencyWarning describes a transiently asymmetric graph state
// (an edge whose reverse twin is missing in dual-write data). It is
// logged by the detector and execution continues; it is never fatal.
type ConsistencyWarning struct {
	Source   string
	Relation string
	Target   string
	Detail   string
}

// String renders the warning for log fields.
func (w ConsistencyWarning) String() string {
	return fmt.Sprintf("asymmetric edge (%s)-[%s]->(%s): %s", w.Source, w.Relation, w.Target, w.Detail)
}
