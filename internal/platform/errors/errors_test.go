package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := New(CodeEventNameEmpty, "event name is required")
	target := New(CodeEventNameEmpty, "different message")
	if !errors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeTaskTitleEmpty, "task title is required")
	if errors.Is(err, other) {
		t.Fatal("expected errors with different codes to not match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Wrap(CodeInternal, "store event", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "store event" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf(nil) = %q, want %q", got, CodeUnknown)
	}
	wrapped := fmt.Errorf("handler: %w", New(CodeForbidden, "organizer role required"))
	if got := CodeOf(wrapped); got != CodeForbidden {
		t.Fatalf("CodeOf(wrapped) = %q, want %q", got, CodeForbidden)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeInternal)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want int
	}{
		{CodeEventNameEmpty, http.StatusBadRequest},
		{CodeGraphicsFormatsEmpty, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeSessionExpired, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeTaskInvalidStatusTransition, http.StatusConflict},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}
