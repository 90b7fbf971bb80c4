// Package services defines the business logic for screening addresses against
// the risk API and recording verdicts. This file centralizes the service-level
// error types so that they can be returned consistently by service methods and
// checked by callers with errors.As.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

// ValidationKind names the rule a request broke.
type ValidationKind string

const (
	// MissingAddress: address absent or blank.
	MissingAddress ValidationKind = "missing_address"
	// MissingRisk: risk absent or blank on insert.
	MissingRisk ValidationKind = "missing_risk"
	// InvalidPayload: data is not a JSON object or array.
	InvalidPayload ValidationKind = "invalid_payload"
	// InvalidAddress: address is not a 0x-prefixed EVM address (only when enforced).
	InvalidAddress ValidationKind = "invalid_address"
)

// ValidationError is returned before any collaborator is called.
type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingAddress:
		return "address is required"
	case MissingRisk:
		return "risk is required"
	case InvalidPayload:
		return "data must be a JSON object or array"
	case InvalidAddress:
		return "address is not a valid EVM address"
	}
	return "invalid request"
}

// PersistenceKind distinguishes store writes from reads.
type PersistenceKind string

const (
	WriteFailed PersistenceKind = "write_failed"
	ReadFailed  PersistenceKind = "read_failed"
)

// PersistenceError wraps a storage fault.
type PersistenceError struct {
	Kind PersistenceKind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsPersistence reports whether err is a *PersistenceError and returns it.
func IsPersistence(err error) (*PersistenceError, bool) {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
