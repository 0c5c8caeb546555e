package services

import (
	"errors"
	"memo-store/storage"
)

// Common service-level errors
var (
	// Memo errors
	ErrMemoNotFound = storage.ErrNotFound
	ErrInvalidID    = errors.New("memo id must be a positive integer")
)
