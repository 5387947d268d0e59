package entity

import "errors"

var (
	// ErrInvalidCode is returned when a short code is not 6-8 alphanumeric characters.
	ErrInvalidCode = errors.New("invalid short code")
	// ErrInvalidContent is returned when a long URL is empty, too long or not an http(s) URL with a host.
	ErrInvalidContent = errors.New("invalid url")
	// ErrInvalidLength is returned when a short code is requested with a length outside the supported range.
	ErrInvalidLength = errors.New("invalid short code length")
	// ErrInvalidCount is returned when a non-positive number of short codes is requested.
	ErrInvalidCount = errors.New("invalid short code count")

	// ErrCodeGenerationExhausted is returned when every attempt to generate an unused short code collided.
	ErrCodeGenerationExhausted = errors.New("short code generation exhausted")

	// ErrMappingNotFound is returned by storage when no mapping matches the lookup.
	ErrMappingNotFound = errors.New("mapping not found")
	// ErrCodeExists is returned by storage when a different mapping already owns the short code.
	ErrCodeExists = errors.New("short code exists")
	// ErrContentExists is returned by storage when the url is already mapped to another short code.
	ErrContentExists = errors.New("url already shortened")

	// ErrCacheMiss is returned by a cache when it holds no entry for the short code.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInternalConsistency signals a broken invariant on an already validated value.
	ErrInternalConsistency = errors.New("internal consistency violation")
)
