// Package apperr defines the error taxonomy shared between the store,
// scheduler, query and auth layers and the HTTP handlers that translate
// them into responses.
package apperr

import "fmt"

// ValidationError signals bad client input. Handlers map it to 4xx.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError signals a missing resource. Handlers map it to 404.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError signals missing or invalid credentials. Handlers map it to 401.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

func Auth(format string, args ...interface{}) error {
	return &AuthError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps a database I/O failure. Handlers map it to 500;
// background loops log it and continue.
type StoreError struct {
	Msg string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func Store(msg string, err error) error {
	return &StoreError{Msg: msg, Err: err}
}
