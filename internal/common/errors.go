// Package common defines shared sentinel errors used across the wormkeeper
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors. Get distinguishes a record that is absent
	// from one that exists but cannot be used.
	ErrorNotFound     = errors.New("not found")
	ErrorCorrupted    = errors.New("corrupted record")
	ErrorInaccessible = errors.New("record storage inaccessible")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorAlreadyExists  = errors.New("already exists")
	ErrorStorageFailure = errors.New("storage failure")

	// Validation errors on register/login/save input.
	ErrorMissingCredentials = errors.New("missing username or password")
	ErrorFieldTooShort      = errors.New("field too short")
	ErrorInvalidUsername    = errors.New("invalid username")
	ErrorInvalidDataObject  = errors.New("invalid data object")
	ErrorDataTooLarge       = errors.New("data too large")
)
