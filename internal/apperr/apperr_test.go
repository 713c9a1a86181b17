package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrNotFound, "get profile", cause)

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected wrapped error to match ErrNotFound, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped error to match cause, got %v", err)
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(ErrValidation, "missing field", nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected wrapped error to match ErrValidation, got %v", err)
	}
}

func TestClassifyOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"not found", Wrap(ErrNotFound, "x", nil), CodeNotFound},
		{"already running", Wrap(ErrAlreadyRunning, "x", nil), CodeAlreadyRunning},
		{"browser not running", Wrap(ErrBrowserNotRunning, "x", nil), CodeBrowserNotRunning},
		{"double wrapped", fmt.Errorf("outer: %w", Wrap(ErrTimeout, "inner", nil)), CodeTimeout},
		{"unknown", errors.New("plain"), CodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyOf(c.err); got != c.want {
				t.Errorf("ClassifyOf() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyRunning, http.StatusConflict},
		{CodeNotRunning, http.StatusConflict},
		{CodeBrowserNotRunning, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeTransport, http.StatusBadGateway},
		{CodeProtocol, http.StatusBadGateway},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.code); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}
