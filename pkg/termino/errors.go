package termino

import "errors"

var (
	// ErrDuplicateKey is returned when a term with the same grouping key is already registered.
	ErrDuplicateKey = errors.New("duplicate grouping key")
	// ErrNotFound is returned when a term key is not present in the terminology.
	ErrNotFound = errors.New("term not found")
	// ErrDanglingEndpoint is returned when a relation endpoint is not present in the terminology.
	ErrDanglingEndpoint = errors.New("dangling relation endpoint")
	// ErrConfiguration marks invalid pass configuration detected before any processing starts.
	ErrConfiguration = errors.New("configuration error")
)
