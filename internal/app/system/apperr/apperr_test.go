package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", BadRequest.New("missing projectId"), http.StatusBadRequest},
		{"unauthorized", Unauthorized.New("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden.New("not you"), http.StatusForbidden},
		{"not found", NotFound.New("user"), http.StatusNotFound},
		{"conflict", Conflict.New("already invited"), http.StatusConflict},
		{"too large", TooLarge.New("body"), http.StatusRequestEntityTooLarge},
		{"internal", Internal.Wrap(errors.New("db down")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped by fmt", fmt.Errorf("invite: %w", Conflict.New("dup")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Conflict.New("User already invited")); got != "User already invited" {
		t.Errorf("Message(conflict) = %q", got)
	}
	if got := Message(Internal.Wrap(errors.New("connection refused"))); got != "Internal server error" {
		t.Errorf("Message(internal) leaked cause: %q", got)
	}
	if got := Message(errors.New("secret detail")); got != "Internal server error" {
		t.Errorf("Message(unclassified) leaked cause: %q", got)
	}
}

func TestIsClient(t *testing.T) {
	if !IsClient(NotFound.New("x")) {
		t.Error("NotFound should be a client error")
	}
	if IsClient(errors.New("x")) {
		t.Error("unclassified error should not be a client error")
	}
}
