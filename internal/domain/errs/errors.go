// Package errs defines the domain error values shared across the application.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when a downstream dependency cannot serve the request
	ErrUnavailable = errors.New("dependency unavailable")
)
