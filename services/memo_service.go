package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"memo-store/models"
	"memo-store/validator"
)

// MemoService handles request validation and logging around the memo store
type MemoService struct {
	repo      MemoRepository
	validator *validator.Validator
	logger    *slog.Logger
}

// NewMemoService creates a new memo service
func NewMemoService(repo MemoRepository, logger *slog.Logger) *MemoService {
	return &MemoService{
		repo:      repo,
		validator: validator.Default(),
		logger:    logger,
	}
}

// Create stores a new memo. Text must be present (it may be empty).
func (ms *MemoService) Create(ctx context.Context, req models.CreateMemoRequest) (*models.Memo, error) {
	if err := ms.validator.Validate(req); err != nil {
		return nil, err
	}

	memo, err := ms.repo.Create(ctx, *req.Text)
	if err != nil {
		ms.logger.Error("failed to create memo", "error", err)
		return nil, err
	}

	ms.logger.Info("memo created", "memo_id", memo.ID)
	return memo, nil
}

// Get retrieves a memo, failing with ErrMemoNotFound when it does not exist
func (ms *MemoService) Get(ctx context.Context, id int64) (*models.Memo, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}

	memo, err := ms.repo.FindByID(ctx, id)
	if err != nil {
		ms.logger.Error("failed to fetch memo", "memo_id", id, "error", err)
		return nil, err
	}
	if memo == nil {
		return nil, ErrMemoNotFound
	}

	return memo, nil
}

// Update replaces the text of an existing memo
func (ms *MemoService) Update(ctx context.Context, id int64, req models.UpdateMemoRequest) (*models.Memo, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}
	if err := ms.validator.Validate(req); err != nil {
		return nil, err
	}

	memo, err := ms.repo.Update(ctx, id, *req.Text)
	if err != nil {
		if !errors.Is(err, ErrMemoNotFound) {
			ms.logger.Error("failed to update memo", "memo_id", id, "error", err)
		}
		return nil, err
	}

	ms.logger.Info("memo updated", "memo_id", id)
	return memo, nil
}

// Delete removes a memo
func (ms *MemoService) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrInvalidID
	}

	if err := ms.repo.DeleteByID(ctx, id); err != nil {
		if !errors.Is(err, ErrMemoNotFound) {
			ms.logger.Error("failed to delete memo", "memo_id", id, "error", err)
		}
		return err
	}

	ms.logger.Info("memo deleted", "memo_id", id)
	return nil
}

// List returns one page of memos
func (ms *MemoService) List(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	page, err := ms.repo.Page(ctx, req)
	if err != nil {
		ms.logger.Error("failed to list memos", "page", req.Page, "size", req.Size, "error", err)
		return nil, err
	}
	return page, nil
}

// Seed fills an empty store with n sample memos and reports how many it created.
// A store that already holds memos is left untouched.
func (ms *MemoService) Seed(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	existing, err := ms.repo.Page(ctx, models.PageRequest{Page: 0, Size: 1})
	if err != nil {
		return 0, fmt.Errorf("check existing memos: %w", err)
	}
	if existing.TotalElements > 0 {
		ms.logger.Info("store already has memos, skipping seed", "count", existing.TotalElements)
		return 0, nil
	}

	for i := 1; i <= n; i++ {
		if _, err := ms.repo.Create(ctx, fmt.Sprintf("sample - %d", i)); err != nil {
			return i - 1, fmt.Errorf("seed memo %d: %w", i, err)
		}
	}

	ms.logger.Info("seeded memos", "count", n)
	return n, nil
}
