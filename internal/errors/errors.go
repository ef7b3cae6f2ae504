package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors of the admissions portal
var (
	// Credentials
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no persisted token")
	ErrInvalidRole        = errors.New("invalid role")

	// Browser contexts
	ErrSessionNotFound = errors.New("session not found")

	// Grade extraction
	ErrTaskNotFound = errors.New("task not found")

	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
