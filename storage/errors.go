package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrNoCaseNumber is returned when a case operation needs an external
	// case number that the case does not have yet
	ErrNoCaseNumber = errors.New("case has no external case number")
)
