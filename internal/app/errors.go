package app

import "fmt"

// The error taxonomy mirrors the HTTP statuses the server maps them to:
// ValidationError -> 400, AuthError -> 401, NotFoundError -> 404,
// ConflictError -> 409. Anything else is a 500 whose detail is logged
// but never echoed to the client.

type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type ConflictError struct{ msg string }

func (e *ConflictError) Error() string { return e.msg }

func conflictf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct{ msg string }

func (e *NotFoundError) Error() string { return e.msg }

func notFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

type AuthError struct{ msg string }

func (e *AuthError) Error() string { return e.msg }

func authErrorf(format string, args ...any) error {
	return &AuthError{msg: fmt.Sprintf(format, args...)}
}
