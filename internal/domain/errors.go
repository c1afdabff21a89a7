package domain

import (
	"errors"
	"fmt"
)

// ErrorKind names one failure category a user action can end in.
type ErrorKind string

const (
	KindInvalidSelection    ErrorKind = "InvalidSelection"
	KindTransport           ErrorKind = "TransportError"
	KindMalformedResponse   ErrorKind = "MalformedResponse"
	KindServerReportedError ErrorKind = "ServerReportedError"
	KindEmptyResult         ErrorKind = "EmptyResult"
	KindNoStations          ErrorKind = "NoStations"
)

// Sentinels for errors.Is checks. Every *Error matches the sentinel of its kind.
var (
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrTransport           = errors.New("backend unreachable")
	ErrMalformedResponse   = errors.New("malformed backend response")
	ErrServerReportedError = errors.New("backend reported an error")
	ErrEmptyResult         = errors.New("no data for the current selection")
	ErrNoStations          = errors.New("no stations available")
)

var sentinels = map[ErrorKind]error{
	KindInvalidSelection:    ErrInvalidSelection,
	KindTransport:           ErrTransport,
	KindMalformedResponse:   ErrMalformedResponse,
	KindServerReportedError: ErrServerReportedError,
	KindEmptyResult:         ErrEmptyResult,
	KindNoStations:          ErrNoStations,
}

// Error is a categorized failure. Msg is what the user is shown; Err is the
// underlying cause, if any.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Error returns the user-facing message. Server-reported messages are passed
// through verbatim.
func (e *Error) Error() string {
	if e.Kind == KindServerReportedError {
		return e.Msg
	}
	prefix := sentinels[e.Kind]
	if prefix == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return prefix.Error()
	}
	return prefix.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error of the given kind around a cause.
func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the category of err, or "" when err is not categorized.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
