package engine

import "errors"

// The engine's failure taxonomy. All five are local and recoverable;
// handlers fold them into {ok:false, error: "..."} envelopes and nothing
// ever reaches the transport layer as a raised error.

// ValidationError: malformed or too-short input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ConfigError: the calendar configuration rules the operation out entirely
// (no active semester, adjustment period over).
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return e.Msg }

// WindowClosedError: check-in attempted outside its legal interval.
type WindowClosedError struct{ Msg string }

func (e *WindowClosedError) Error() string { return e.Msg }

// StateError: the ledger row isn't in a state that permits the transition.
type StateError struct{ Msg string }

func (e *StateError) Error() string { return e.Msg }

// ConflictError: the write would collide with something that already
// happened (duplicate excuse, double-booked professor).
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

// ClientMessage reports whether err belongs to the taxonomy, and if so the
// message safe to hand to the caller.
func ClientMessage(err error) (string, bool) {
	var (
		ve *ValidationError
		ce *ConfigError
		we *WindowClosedError
		se *StateError
		fe *ConflictError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &we),
		errors.As(err, &se), errors.As(err, &fe):
		return err.Error(), true
	}
	return "", false
}
