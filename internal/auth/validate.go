// ABOUTME: Client-side credential checks run before contacting the backend
// ABOUTME: Registration is stricter than login

package auth

import "strings"

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// Field names reported in ValidationError
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// Validate checks creds for the given mode
func Validate(mode Mode, creds Credentials) error {
	if err := ValidateField(mode, FieldUsername, creds.Username); err != nil {
		return err
	}
	return ValidateField(mode, FieldPassword, creds.Password)
}

// ValidateField checks a single credential field, so forms can flag it as
// the user types
func ValidateField(mode Mode, field, value string) error {
	switch field {
	case FieldUsername:
		username := strings.TrimSpace(value)
		if mode == ModeLogin && username == "" {
			return &ValidationError{Field: field, Message: "username is required"}
		}
		if mode == ModeRegister && len([]rune(username)) < minUsernameLen {
			return &ValidationError{Field: field, Message: "username must be at least 3 characters"}
		}
	case FieldPassword:
		if mode == ModeLogin && value == "" {
			return &ValidationError{Field: field, Message: "password is required"}
		}
		if mode == ModeRegister && len([]rune(value)) < minPasswordLen {
			return &ValidationError{Field: field, Message: "password must be at least 6 characters"}
		}
	}
	return nil
}
