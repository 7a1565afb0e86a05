// Package apperr defines the failure categories shared by the extraction layers.
package apperr

import "errors"

var (
	// ErrTransport means the primary backend did not answer after all retries.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse means a response could not be parsed even after repair.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrBackendUnavailable means the secondary backend or its driver is absent.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrNotFound means a named lookup matched nothing.
	ErrNotFound = errors.New("not found")
)
