package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")

	ErrConfigMissing     = errors.New("required configuration missing")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrOracleUnavailable = errors.New("membership oracle unavailable")
	ErrUnauthorized      = errors.New("not authorized")
	ErrMalformedRequest  = errors.New("malformed request")
)
