// Package fault defines the error taxonomy surfaced to callers of the rental
// engine. Every caller-visible failure is one of three kinds: a missing
// referenced entity, a business-invariant conflict, or malformed input.
package fault

import (
	"errors"
	"fmt"
)

// Conflict reasons used across the engine.
const (
	ReasonOwnerMismatch      = "owner mismatch"
	ReasonProductUnavailable = "product unavailable"
	ReasonSelfRental         = "self rental"
	ReasonPaymentExists      = "payment already exists"
	ReasonReviewExists       = "review already exists"
	ReasonRentalNotCompleted = "rental not completed"
	ReasonRentalNotActive    = "rental not active"
)

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and identifier.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a request that violates a business invariant. It is a
// rejected request, not a transient condition.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// Conflict builds a ConflictError with the provided reason.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// ValidationError reports malformed input, rejected before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ConflictReason extracts the reason when err is a ConflictError, else "".
func ConflictReason(err error) string {
	var target *ConflictError
	if errors.As(err, &target) {
		return target.Reason
	}
	return ""
}
