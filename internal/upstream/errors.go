package upstream

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure.
type Kind string

const (
	// KindUnauthorized: credential missing locally or refused by the provider (401/403).
	KindUnauthorized Kind = "unauthorized"
	// KindUnavailable: transport failure, DNS, refused connection or timeout.
	KindUnavailable Kind = "unavailable"
	// KindRejected: any other non-2xx status.
	KindRejected Kind = "rejected"
	// KindBadResponse: 2xx whose body is unreadable, too large or not JSON.
	KindBadResponse Kind = "bad_response"
)

// Error is returned by every Client method on failure.
type Error struct {
	Kind   Kind
	Op     string // register|fetch
	Status int    // HTTP status when a response was received, else 0
	Body   []byte // bounded copy of the response body for Rejected
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("upstream %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err when it wraps an *Error, or "" otherwise.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

// ErrMissingCredential is wrapped by KindUnauthorized errors raised before
// any request is sent.
var ErrMissingCredential = errors.New("api credential is not configured")
