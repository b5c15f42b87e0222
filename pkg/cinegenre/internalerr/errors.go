package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrSourceMissing    = errors.New("source file missing")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrNoChampion       = errors.New("no champion model selected")
)
