// Package common defines the error taxonomy and small helpers shared by the
// session, repository and adapter layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Directory-level errors.
	ErrorNotFound = errors.New("not found")

	// Malformed or missing required fields, unrecognized category.
	ErrValidation = errors.New("validation error")

	// No active session where one is required, or credential mismatch.
	ErrAuthentication = errors.New("authentication failed")

	// Duplicate signup email.
	ErrConflict = errors.New("already exists")

	// I/O failure reaching either the device store or the remote store.
	ErrBackendUnavailable = errors.New("backend unavailable")
)
