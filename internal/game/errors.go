package game

import "errors"

// Domain errors. Anything else returned by the engine is an infrastructure
// failure that should be logged and surfaced as a generic message.
var (
	// ErrNotFound is returned when an interaction, game or archived round does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an operation does not apply to the current phase.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidOperation is returned when the caller is not allowed to perform the operation.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrAmbiguousInteraction is returned when a lookup without message id matches several prompts.
	ErrAmbiguousInteraction = errors.New("ambiguous interaction")
)

// IsDomainError reports whether err is one of the expected game rejections.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrAmbiguousInteraction)
}
