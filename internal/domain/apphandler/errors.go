package apphandler

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Kind classifies command failures
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindAlreadyTerminated
	KindInternal
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindAlreadyTerminated:
		return "already_terminated"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is returned for every rejected command
type Error struct {
	Kind Kind
	Op   string
	ID   types.AppIdentity
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAlreadyTerminated = &Error{Kind: KindAlreadyTerminated}
	ErrInternal          = &Error{Kind: KindInternal}
)

// ErrCancelled is observed by a caller whose reply was closed without a value
var ErrCancelled = errors.New("apphandler: reply closed without a value")

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.ID != "" {
		msg += fmt.Sprintf(" (app %s)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.ID == "" && t.Err == nil
}

// KindOf extracts the kind of err, or 0 when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalidInput(op string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}

func notFound(op string, id types.AppIdentity) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id}
}

func terminated(op string) *Error {
	return &Error{Kind: KindAlreadyTerminated, Op: op}
}

func internal(op string, id types.AppIdentity, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, ID: id, Err: err}
}

// status is the metrics label for a command outcome
func status(err error) string {
	if err == nil {
		return "ok"
	}
	if k := KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}
