// Package faults classifies domain errors so outer layers can decide how to
// present them without knowing every sentinel.
package faults

import "errors"

// Kind is the class of a domain error.
type Kind int

const (
	Invalid Kind = iota + 1
	Conflict
	Unauthenticated
	NotFound
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a domain error with a message safe to show to the user.
type Error struct {
	Kind Kind
	Msg  string
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// Is reports whether err carries a fault of kind k.
func Is(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// Message returns the user facing message of the first *Error in err's chain.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return ""
}
