package storage

import (
	"context"
	"memo-store/models"
)

// Store is the interface for all memo persistence backends.
// Every backend assigns ids itself and enforces the text constraint on write.
type Store interface {
	// ==================== WRITE OPERATIONS ====================

	// Create persists a new memo and returns it with its assigned id
	Create(ctx context.Context, text string) (*models.Memo, error)

	// Update replaces the text of an existing memo.
	// Returns ErrNotFound if no memo has the id.
	Update(ctx context.Context, id int64, text string) (*models.Memo, error)

	// DeleteByID removes a memo permanently.
	// Returns ErrNotFound if no memo has the id.
	DeleteByID(ctx context.Context, id int64) error

	// ==================== READ OPERATIONS ====================

	// FindByID returns (nil, nil) when the memo does not exist
	FindByID(ctx context.Context, id int64) (*models.Memo, error)

	// Page returns one page of memos under the requested ordering
	Page(ctx context.Context, req models.PageRequest) (*models.Page, error)

	// Close releases the backend's resources
	Close() error
}

// Pinger is implemented by backends that can report their health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks store health when the backend supports it
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
