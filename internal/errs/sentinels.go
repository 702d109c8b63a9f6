// Package errs contains sentinel errors shared by repositories, services and
// the HTTP layer, which maps them to status codes.
package errs

import "errors"

// Sentinels matched with errors.Is.
var (
	// ErrNotFound: no such user or challenge.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized: bad credentials or a session token that is not live (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited: login temporarily locked for this email and client (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists: email already registered (409).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation: malformed registration input (400).
	ErrValidation = errors.New("validation")
)
