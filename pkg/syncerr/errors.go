// Package syncerr defines the error taxonomy shared by the cookie sync
// daemon, its RPC surface and its clients.
package syncerr

import (
	"errors"
	"fmt"
)

// Code classifies a sync failure so callers can react without parsing
// messages.
type Code string

const (
	// AccountCheck reports missing or incomplete remote credentials.
	AccountCheck Code = "AccountCheck"
	// RouteNotFound reports that the remote account or namespace does not exist.
	RouteNotFound Code = "RouteNotFound"
	// ItemNotFound reports a remove targeting a cookie id that is not stored.
	ItemNotFound Code = "ItemNotFound"
	// DecodeError reports a malformed remote blob. It never reaches callers
	// of the repository, decoding falls back to an empty map instead.
	DecodeError Code = "DecodeError"
	// NetworkError reports a transport failure talking to the remote store.
	NetworkError Code = "NetworkError"
	// Internal covers everything else.
	Internal Code = "Internal"
)

// Error carries a Code alongside a human readable message and an optional
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New returns an *Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap returns an *Error with the given code wrapping err.
// The message defaults to err.Error().
func Wrap(code Code, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// Errorf formats a message for an *Error of the given code.
func Errorf(code Code, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Code: code, Message: err.Error(), Err: errors.Unwrap(err)}
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error with the same Code, so that
// errors.Is(err, syncerr.New(syncerr.ItemNotFound, "")) works across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the Code of the first *Error in err's chain, or Internal
// when there is none. A nil error has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// Sentinels usable with errors.Is.
var (
	ErrAccountCheck  = New(AccountCheck, "account check failed")
	ErrRouteNotFound = New(RouteNotFound, "remote route not found")
	ErrItemNotFound  = New(ItemNotFound, "cookie not found")
	ErrDecode        = New(DecodeError, "malformed remote payload")
	ErrNetwork       = New(NetworkError, "network error")
)

// NeedsSettings reports whether the failure is fixed by revisiting the
// account settings, which is how clients decide to offer a settings action.
func NeedsSettings(err error) bool {
	switch CodeOf(err) {
	case AccountCheck, RouteNotFound:
		return true
	}
	return false
}
