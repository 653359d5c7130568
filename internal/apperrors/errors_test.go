// Package apperrors tests verify the custom error types (ErrNotFound,
// HTTPStatusError, DiscordError), their Error() messages, Is() matching
// semantics and compatibility with errors.Is() through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrNotFound
// ---------------------------------------------------------------------------

func TestErrNotFound_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrNotFound
		expected string
	}{
		{
			name:     "with string ID",
			err:      &ErrNotFound{Resource: "tmdb movie", ID: "Inception"},
			expected: "tmdb movie with ID Inception not found",
		},
		{
			name:     "with int ID",
			err:      &ErrNotFound{Resource: "poster", ID: 27205},
			expected: "poster with ID 27205 not found",
		},
		{
			name:     "with nil ID",
			err:      &ErrNotFound{Resource: "active player", ID: nil},
			expected: "active player not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrNotFound_Is(t *testing.T) {
	t.Parallel()
	err := NewNotFoundError("poster", 1)

	if !errors.Is(err, &ErrNotFound{Resource: "other", ID: 99}) {
		t.Error("expected errors.Is to match *ErrNotFound regardless of fields")
	}
	if errors.Is(err, &HTTPStatusError{}) {
		t.Error("expected errors.Is not to match a different error type")
	}

	wrapped := fmt.Errorf("resolve: %w", err)
	if !errors.Is(wrapped, &ErrNotFound{}) {
		t.Error("expected errors.Is to match through wrapping")
	}
}

// ---------------------------------------------------------------------------
// HTTPStatusError
// ---------------------------------------------------------------------------

func TestHTTPStatusError(t *testing.T) {
	t.Parallel()
	err := &HTTPStatusError{URL: "http://localhost:8080/jsonrpc", StatusCode: 401}

	if got, want := err.Error(), "unexpected status code 401 from http://localhost:8080/jsonrpc"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var target *HTTPStatusError
	if !errors.As(fmt.Errorf("fetch: %w", err), &target) {
		t.Fatal("expected errors.As to find *HTTPStatusError")
	}
	if target.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", target.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// DiscordError and sentinels
// ---------------------------------------------------------------------------

func TestDiscordError(t *testing.T) {
	t.Parallel()
	err := &DiscordError{Code: 4000, Message: "child \"activity\" fails"}

	if got, want := err.Error(), "discord error 4000: child \"activity\" fails"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(fmt.Errorf("set activity: %w", err), &DiscordError{}) {
		t.Error("expected errors.Is to match *DiscordError")
	}
}

func TestSentinels(t *testing.T) {
	t.Parallel()
	if errors.Is(ErrPipeClosed, ErrPlayerUnavailable) {
		t.Error("sentinel errors must be distinct")
	}
	if !errors.Is(fmt.Errorf("update: %w", ErrPipeClosed), ErrPipeClosed) {
		t.Error("expected wrapped ErrPipeClosed to match")
	}
}
