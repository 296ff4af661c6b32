// Package common defines shared constants and sentinel errors used across
// the repositories, services and the CLI. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Session store errors. Both are absorbed by the lifecycle manager and
	// surface to the presentation layer only as "no user".
	ErrNoSession        = errors.New("no session")
	ErrMalformedSession = errors.New("malformed session record")

	// Auth errors. ErrInvalidCredentials never tells an unknown email apart
	// from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")

	// Account management errors.
	ErrorValidation = errors.New("validation error")
	ErrEmailTaken   = errors.New("email already registered")
	ErrAdminExists  = errors.New("admin user already exists")
)
