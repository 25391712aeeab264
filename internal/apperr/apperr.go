// Package apperr classifies the failures the negotiation core can surface.
package apperr

import "fmt"

type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindCompletionFailure Kind = "COMPLETION_FAILURE"
	KindSchemaMismatch    Kind = "SCHEMA_MISMATCH"
	KindNotFound          Kind = "NOT_FOUND"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrCompletionFailure = &Error{Kind: KindCompletionFailure}
	ErrSchemaMismatch    = &Error{Kind: KindSchemaMismatch}
	ErrNotFound          = &Error{Kind: KindNotFound}
)

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Kind. A schema mismatch is also a completion failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindCompletionFailure && e.Kind == KindSchemaMismatch
}

func New(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func InvalidInput(reason string) *Error {
	return New(KindInvalidInput, reason, nil)
}

func CompletionFailure(reason string, err error) *Error {
	return New(KindCompletionFailure, reason, err)
}

func SchemaMismatch(reason string, err error) *Error {
	return New(KindSchemaMismatch, reason, err)
}

func NotFound(reason string) *Error {
	return New(KindNotFound, reason, nil)
}
