// Package cache puts an LRU of memos in front of any storage.Store.
//
// The cache only stays coherent while this process is the sole writer to the
// underlying store. Pages always go to the backend.
package cache

import (
	"context"
	"fmt"
	"memo-store/models"
	"memo-store/storage"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Store struct {
	next  storage.Store
	memos *lru.Cache[int64, models.Memo]

	// Serializes backend writes with cache fills so a slow read can never
	// reinsert a value that a concurrent write already replaced
	mu sync.Mutex
}

var _ storage.Store = (*Store)(nil)

func New(next storage.Store, size int) (*Store, error) {
	memos, err := lru.New[int64, models.Memo](size)
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	return &Store{next: next, memos: memos}, nil
}

func (s *Store) Create(ctx context.Context, text string) (*models.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memo, err := s.next.Create(ctx, text)
	if err != nil {
		return nil, err
	}
	s.memos.Add(memo.ID, *memo)
	return memo, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*models.Memo, error) {
	if memo, ok := s.memos.Get(id); ok {
		return &memo, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memo, err := s.next.FindByID(ctx, id)
	if err != nil || memo == nil {
		return memo, err
	}
	s.memos.Add(id, *memo)
	return memo, nil
}

func (s *Store) Update(ctx context.Context, id int64, text string) (*models.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memo, err := s.next.Update(ctx, id, text)
	if err != nil {
		// The backend state is unknown after a failed write
		s.memos.Remove(id)
		return nil, err
	}
	s.memos.Add(id, *memo)
	return memo, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memos.Remove(id)
	return s.next.DeleteByID(ctx, id)
}

func (s *Store) Page(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	return s.next.Page(ctx, req)
}

func (s *Store) Ping(ctx context.Context) error {
	return storage.Ping(ctx, s.next)
}

func (s *Store) Close() error {
	s.memos.Purge()
	return s.next.Close()
}

// Len reports how many memos are cached
func (s *Store) Len() int {
	return s.memos.Len()
}
