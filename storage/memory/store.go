package memory

import (
	"cmp"
	"context"
	"memo-store/models"
	"memo-store/storage"
	"slices"
	"sync"
)

// Store keeps memos in a map guarded by a single lock.
// Ids come from a counter that only moves forward, so deleted ids are never reused.
type Store struct {
	mu     sync.RWMutex
	memos  map[int64]models.Memo
	lastID int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		memos: make(map[int64]models.Memo),
	}
}

func (s *Store) Create(_ context.Context, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	memo.ID = s.lastID
	s.memos[memo.ID] = *memo
	return memo, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*models.Memo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memo, ok := s.memos[id]
	if !ok {
		return nil, nil
	}
	return &memo, nil
}

func (s *Store) Update(_ context.Context, id int64, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memos[id]; !ok {
		return nil, storage.ErrNotFound
	}
	memo.ID = id
	s.memos[id] = *memo
	return memo, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.memos, id)
	return nil
}

func (s *Store) Page(_ context.Context, req models.PageRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]models.Memo, 0, len(s.memos))
	for _, memo := range s.memos {
		all = append(all, memo)
	}
	s.mu.RUnlock()

	order := req.OrderBy()
	slices.SortFunc(all, func(a, b models.Memo) int {
		return compare(a, b, order)
	})

	total := int64(len(all))
	if req.PastEnd(total) {
		return models.NewPage(req, nil, total), nil
	}
	offset, _ := req.Offset()
	end := offset + min(int64(req.Size), total-offset)
	return models.NewPage(req, all[offset:end], total), nil
}

func (s *Store) Close() error {
	return nil
}

// compare orders two memos by the criteria in priority order
func compare(a, b models.Memo, order []models.Sort) int {
	for _, o := range order {
		var c int
		switch o.Field {
		case models.SortByID:
			c = cmp.Compare(a.ID, b.ID)
		case models.SortByText:
			c = cmp.Compare(a.Text, b.Text)
		}
		if o.Direction == models.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
