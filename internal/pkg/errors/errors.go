package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrQuotaExceeded means the caller's LLM allowance is used up; no
	// generation was attempted.
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrGenerationFailed means the LLM call failed or kept returning
	// unparseable JSON after retries. No version was persisted.
	ErrGenerationFailed = errors.New("roadmap generation failed")
	// ErrValidationBlocked means a finalize was attempted while the
	// version's validation flags are not both true.
	ErrValidationBlocked = errors.New("validation not passed")
	// ErrInvalidStateTransition means an operation was attempted on a
	// version whose status does not allow it (e.g. editing a FINAL).
	ErrInvalidStateTransition = errors.New("invalid state transition")
)
