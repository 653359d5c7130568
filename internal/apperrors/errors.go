package apperrors

import (
	"errors"
	"fmt"
)

// ErrPlayerUnavailable is returned when the Kodi web interface could not be reached
// after every retry attempt of a fetch.
var ErrPlayerUnavailable = errors.New("kodi web interface unavailable")

// ErrPipeClosed is returned by the presence transport when the connection to the
// Discord client is gone (broken pipe, EOF, closed socket or a CLOSE frame).
var ErrPipeClosed = errors.New("discord ipc pipe closed")

// ErrDiscordUnavailable is returned when no connection to the Discord client could be
// established, typically because Discord is not running.
var ErrDiscordUnavailable = errors.New("discord unavailable")

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// HTTPStatusError is returned when a remote endpoint answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *HTTPStatusError) Is(target error) bool {
	_, ok := target.(*HTTPStatusError)
	return ok
}

// DiscordError is an ERROR event returned by the Discord client for a command.
type DiscordError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *DiscordError) Error() string {
	return fmt.Sprintf("discord error %d: %s", e.Code, e.Message)
}

// Is allows for error checking with errors.Is().
func (e *DiscordError) Is(target error) bool {
	_, ok := target.(*DiscordError)
	return ok
}
