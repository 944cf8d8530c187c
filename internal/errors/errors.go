// Package errors provides structured error types for parley.
// These errors provide context about what operation failed and where.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindAuth
	KindIO
	KindNetwork
	KindConfig
	KindTimeout
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindAuth:
		return "unauthorized"
	case KindIO:
		return "I/O error"
	case KindNetwork:
		return "network error"
	case KindConfig:
		return "configuration error"
	case KindTimeout:
		return "timeout"
	case KindBusy:
		return "busy"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for parley.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the part of err meant for the user: the context of the
// outermost Error, or the full text when there is none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Context != "" {
		return e.Context
	}
	return err.Error()
}

// Request errors

// StatusKind maps an HTTP status code to an error Kind.
func StatusKind(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 400 || status == 422:
		return KindInvalid
	default:
		return KindNetwork
	}
}

func RequestFailed(op Op, method, path string, status int) error {
	return E(op, StatusKind(status), fmt.Sprintf("%s %s returned status %d", method, path, status))
}

func ResponseInvalid(op Op, path string, err error) error {
	return E(op, KindInvalid, fmt.Sprintf("malformed response from %s", path), err)
}

// Session errors

func NoActiveConversation(op Op) error {
	return E(op, KindInvalid, "no active conversation")
}

func SubmissionInFlight(op Op) error {
	return E(op, KindBusy, "a message is already being sent")
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

// Credential errors

func TokenMissing() error {
	return E(Op("config.LoadToken"), KindAuth, "no token configured; run 'parley login' or set PARLEY_TOKEN")
}

// Attachment errors

func ImageInvalid(name, reason string) error {
	return E(Op("attachment.Load"), KindInvalid, fmt.Sprintf("%s: %s", name, reason))
}
