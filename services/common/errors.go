package common

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying every failure the engines can surface.
// Callers branch with errors.Is; messages carry the specifics.
var (
	// ErrValidation marks bad input shape or range (invalid draw count,
	// out-of-range bet, self-trade).
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown player, card, pool, trade or challenge.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition marks a state-dependent rejection before any
	// mutation (insufficient funds, missing card, no eligible pity card).
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict marks a trade that became invalid between creation and
	// acceptance; the trade is auto-cancelled and the reason surfaced.
	ErrConflict = errors.New("conflict")

	// ErrExternal marks a failed or malformed external service call.
	ErrExternal = errors.New("external service error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPrecondition}, args...)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

func Externalf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrExternal}, args...)...)
}
