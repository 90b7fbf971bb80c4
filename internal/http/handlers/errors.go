// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and give clients a stable, machine-readable
// taxonomy next to the human-readable message. Validation failures reuse the
// service-level kind as their code (missing_address, missing_risk,
// invalid_payload, invalid_address).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "missing_address",
//	  "message": "address is required"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeUnavailable      = "unavailable"
	ErrCodeTooLarge         = "payload_too_large"

	// Domain-specific:
	ErrCodeStoreFailed = "store_failed"
	ErrCodeFetchFailed = "fetch_failed"
)

// Fixed client-facing messages. Failure detail goes to the logs only.
const (
	msgInternalPlain = "Internal Server Error"
	msgStoreFailed   = "Internal server error"
	msgFetchFailed   = "DB Fetch error"
	msgStored        = "Data stored in database"
)
