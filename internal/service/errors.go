package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when the username or email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrNotFound is returned when the requested user, job or feedback does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps validation failures of caller supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrServerMisconfigured indicates missing server side configuration such as the signing secret.
	ErrServerMisconfigured = errors.New("server misconfigured")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
