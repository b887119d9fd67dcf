package db

import "time"

// Term is a term key known to the store. Terms are referenced by key only; the
// terminology itself lives in memory.
type Term struct {
	ID  int64
	Key string
}

// Document is a processed source document.
type Document struct {
	ID      int64
	Key     string
	AddedAt time.Time
}

// Occurrence is one recorded span of a term in a document.
type Occurrence struct {
	ID          int64
	TermKey     string
	DocumentKey string
	Begin       int
	End         int
}
