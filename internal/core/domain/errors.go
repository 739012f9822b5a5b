package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingConfig indicates required configuration is absent at startup.
	ErrMissingConfig = errors.New("missing required configuration")

	// ErrUnsupportedProvider indicates an unknown LLM provider or store driver.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// Retrieval Errors.

	// ErrNoDataAvailable indicates a matched topic returned zero rows.
	ErrNoDataAvailable = errors.New("no data available")

	// ErrRetrievalFailed indicates the event store was unreachable or the query failed.
	// The orchestrator folds this into ErrNoDataAvailable for the caller.
	ErrRetrievalFailed = errors.New("event retrieval failed")

	// Generation Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGenerationFailed indicates the generative-text call failed
	// (network, auth, quota or malformed response).
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout indicates the generative-text call exceeded its deadline.
	// Errors wrapping it also match ErrGenerationFailed.
	ErrGenerationTimeout error = &timeoutError{msg: "generation timed out"}

	// ErrRateLimited indicates the LLM rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Dispatch Errors.

	// ErrDispatchFailed indicates the notification channel rejected or dropped a message.
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrNotifierUnavailable indicates no notification channel is configured.
	ErrNotifierUnavailable = errors.New("notifier unavailable")
)

// timeoutError is a generation failure that is also a timeout.
type timeoutError struct {
	msg string
}

func (e *timeoutError) Error() string { return e.msg }

// Is reports ErrGenerationFailed as a match so callers can branch on either.
func (e *timeoutError) Is(target error) bool {
	return target == ErrGenerationFailed
}
