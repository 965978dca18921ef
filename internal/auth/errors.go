// ABOUTME: Error types returned by the auth flow
// ABOUTME: Callers use errors.As and errors.Is to tell them apart

package auth

import (
	"errors"
	"fmt"
)

// Fallback messages used when the backend gives no reason
const (
	LoginFailedMessage    = "login failed, please try again later"
	RegisterFailedMessage = "registration failed, please try again later"
)

// ErrSuperseded is returned when a newer login, register or logout started
// before this operation completed. Its result was discarded.
var ErrSuperseded = errors.New("auth: operation superseded")

// Error is a failed login or register. Message is the text shown to the user.
type Error struct {
	Op      string
	Message string

	// Transport is set when the backend could not be reached
	Transport bool
}

func (e *Error) Error() string {
	return e.Message
}

// ValidationError rejects credentials before any request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
