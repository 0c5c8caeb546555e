package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update and DeleteByID for an unknown id
var ErrNotFound = errors.New("memo not found")

// Error wraps a backend failure with the operation and the memo it targeted
type Error struct {
	Op  string
	ID  int64
	Err error
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s memo %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err
func Wrap(op string, id int64, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, ID: id, Err: err}
}
