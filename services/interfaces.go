package services

import (
	"context"
	"memo-store/models"
)

// MemoRepository defines the interface for memo data access.
// Every storage.Store satisfies it.
type MemoRepository interface {
	Create(ctx context.Context, text string) (*models.Memo, error)
	FindByID(ctx context.Context, id int64) (*models.Memo, error)
	Update(ctx context.Context, id int64, text string) (*models.Memo, error)
	DeleteByID(ctx context.Context, id int64) error
	Page(ctx context.Context, req models.PageRequest) (*models.Page, error)
}
