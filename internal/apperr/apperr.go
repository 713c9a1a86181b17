// Package apperr defines the error taxonomy shared across the browsion
// control plane. Every package returns errors wrapping one of these
// sentinels so the HTTP front end can translate them into status codes
// without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies which taxonomy bucket an error belongs to.
type Code int

const (
	// CodeUnknown is the zero value; treated as an internal server error.
	CodeUnknown Code = iota
	CodeNotFound
	CodeAlreadyRunning
	CodeNotRunning
	CodeBrowserNotRunning
	CodeValidation
	CodeUnauthorized
	CodeTimeout
	CodeTransport
	CodeProtocol
)

var (
	// ErrNotFound indicates the requested profile, session, or resource
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRunning indicates a profile already has a live browser process.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning indicates an operation requires a running profile that isn't.
	ErrNotRunning = errors.New("not running")
	// ErrBrowserNotRunning indicates a CDP operation was attempted against
	// a profile with no attached browser session.
	ErrBrowserNotRunning = errors.New("browser not running")
	// ErrValidation indicates malformed or missing request parameters.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates a missing or incorrect API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransport indicates a WebSocket/network failure talking to Chrome.
	ErrTransport = errors.New("transport error")
	// ErrProtocol indicates a malformed or unexpected CDP response.
	ErrProtocol = errors.New("protocol error")
)

var codeBySentinel = map[error]Code{
	ErrNotFound:          CodeNotFound,
	ErrAlreadyRunning:    CodeAlreadyRunning,
	ErrNotRunning:        CodeNotRunning,
	ErrBrowserNotRunning: CodeBrowserNotRunning,
	ErrValidation:        CodeValidation,
	ErrUnauthorized:      CodeUnauthorized,
	ErrTimeout:           CodeTimeout,
	ErrTransport:         CodeTransport,
	ErrProtocol:          CodeProtocol,
}

// Wrap annotates err with msg while preserving errors.Is matching against
// the given sentinel.
func Wrap(sentinel error, msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", msg, sentinel)
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, err)
}

// ClassifyOf walks err's chain and returns the taxonomy Code it matches,
// or CodeUnknown if none of the sentinels match.
func ClassifyOf(err error) Code {
	for sentinel, code := range codeBySentinel {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}

// HTTPStatus maps a Code to the HTTP status code the front end should send.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeAlreadyRunning:
		return 409
	case CodeNotRunning, CodeBrowserNotRunning:
		return 409
	case CodeValidation:
		return 400
	case CodeUnauthorized:
		return 401
	case CodeTimeout:
		return 504
	case CodeTransport, CodeProtocol:
		return 502
	default:
		return 500
	}
}
