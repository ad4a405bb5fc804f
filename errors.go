package weathernet

import "errors"

// Error taxonomy shared across the ingestion, query, and polling layers.
// Callers classify with errors.Is; the HTTP layer maps each class to a
// status code.
var (
	// ErrInvalidPayload marks malformed ingestion input. Never retried.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidArgument marks bad query parameters, e.g. a non-positive limit.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable marks an unreachable durable store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNetworkFailure marks a failed dashboard fetch. Retried per policy.
	ErrNetworkFailure = errors.New("network failure")
)
