package models

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks failures to obtain data from a remote source
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound is returned when a word cannot be resolved to a server id
	ErrNotFound = errors.New("word not found")
)

// FetchError wraps a transport or status failure of a remote read
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
