// Package storagetest holds the behavior every storage.Store backend must share.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"memo-store/models"
	"memo-store/storage"
	"memo-store/validator"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStore returns an empty store; the suite closes it when the test ends
type NewStore func(t *testing.T) storage.Store

// Run exercises the full store contract against fresh stores from newStore
func Run(t *testing.T, newStore NewStore) {
	t.Run("Create assigns unique ids", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		seen := make(map[int64]bool)
		for i := 0; i < 20; i++ {
			memo, err := s.Create(ctx, fmt.Sprintf("memo %d", i))
			require.NoError(t, err)
			assert.NotZero(t, memo.ID)
			assert.False(t, seen[memo.ID], "duplicate id %d", memo.ID)
			seen[memo.ID] = true
		}
	})

	t.Run("FindByID returns created text", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		created, err := s.Create(ctx, "buy milk")
		require.NoError(t, err)

		found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "buy milk", found.Text)
	})

	t.Run("FindByID of unknown id is absent", func(t *testing.T) {
		s := open(t, newStore)

		found, err := s.FindByID(context.Background(), 424242)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Empty text is stored", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		created, err := s.Create(ctx, "")
		require.NoError(t, err)

		found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "", found.Text)
	})

	t.Run("Text length limit", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		_, err := s.Create(ctx, strings.Repeat("a", models.MaxTextLength))
		require.NoError(t, err)

		// Multi-byte characters count once each
		_, err = s.Create(ctx, strings.Repeat("가", models.MaxTextLength))
		require.NoError(t, err)

		_, err = s.Create(ctx, strings.Repeat("a", models.MaxTextLength+1))
		requireValidationError(t, err)

		page, err := s.Page(ctx, models.PageRequest{Page: 0, Size: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.TotalElements, "rejected write must leave nothing behind")
	})

	t.Run("Update replaces text and keeps id", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		created, err := s.Create(ctx, "draft")
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, "final")
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "final", updated.Text)

		found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "final", found.Text)
	})

	t.Run("Update of unknown id fails", func(t *testing.T) {
		s := open(t, newStore)

		_, err := s.Update(context.Background(), 99, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Update rejects oversized text", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		created, err := s.Create(ctx, "keep me")
		require.NoError(t, err)

		_, err = s.Update(ctx, created.ID, strings.Repeat("b", models.MaxTextLength+1))
		requireValidationError(t, err)

		found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "keep me", found.Text)
	})

	t.Run("DeleteByID removes memo", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		created, err := s.Create(ctx, "short lived")
		require.NoError(t, err)

		require.NoError(t, s.DeleteByID(ctx, created.ID))

		found, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		err = s.DeleteByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Deleted ids are not reused", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		first, err := s.Create(ctx, "one")
		require.NoError(t, err)
		second, err := s.Create(ctx, "two")
		require.NoError(t, err)
		require.NoError(t, s.DeleteByID(ctx, second.ID))

		third, err := s.Create(ctx, "three")
		require.NoError(t, err)
		assert.Greater(t, third.ID, second.ID)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("Page of empty store", func(t *testing.T) {
		s := open(t, newStore)

		page, err := s.Page(context.Background(), models.PageRequest{Page: 0, Size: 10})
		require.NoError(t, err)
		assert.NotNil(t, page.Memos)
		assert.Empty(t, page.Memos)
		assert.EqualValues(t, 0, page.TotalElements)
		assert.EqualValues(t, 0, page.TotalPages)
	})

	t.Run("Page sorted by id descending", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		ids := seed(t, s, 101)

		page, err := s.Page(ctx, models.PageRequest{
			Page: 0,
			Size: 10,
			Sort: []models.Sort{{Field: models.SortByID, Direction: models.Desc}},
		})
		require.NoError(t, err)
		require.Len(t, page.Memos, 10)
		assert.EqualValues(t, 101, page.TotalElements)
		assert.EqualValues(t, 11, page.TotalPages)

		for i, memo := range page.Memos {
			assert.Equal(t, ids[100-i], memo.ID)
		}
	})

	t.Run("Page defaults to insertion order", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		ids := seed(t, s, 25)

		page, err := s.Page(ctx, models.PageRequest{Page: 2, Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Memos, 5)
		for i, memo := range page.Memos {
			assert.Equal(t, ids[20+i], memo.ID)
		}
	})

	t.Run("Page beyond last page is empty", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		seed(t, s, 15)

		page, err := s.Page(ctx, models.PageRequest{Page: 5, Size: 10})
		require.NoError(t, err)
		assert.NotNil(t, page.Memos)
		assert.Empty(t, page.Memos)
		assert.EqualValues(t, 15, page.TotalElements)
		assert.EqualValues(t, 2, page.TotalPages)
	})

	t.Run("Page far past the end is empty", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		seed(t, s, 3)

		for _, req := range []models.PageRequest{
			{Page: math.MaxInt, Size: 100},
			{Page: math.MaxInt64/100 + 1, Size: 100},
			{Page: 1 << 62, Size: 4},
		} {
			page, err := s.Page(ctx, req)
			require.NoError(t, err, "page %d size %d", req.Page, req.Size)
			assert.NotNil(t, page.Memos)
			assert.Empty(t, page.Memos, "page %d size %d", req.Page, req.Size)
			assert.EqualValues(t, 3, page.TotalElements)
			assert.EqualValues(t, 1, page.TotalPages)
		}
	})

	t.Run("Page size larger than the store", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		ids := seed(t, s, 3)

		page, err := s.Page(ctx, models.PageRequest{Page: 0, Size: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, ids, memoIDs(page.Memos))
		assert.EqualValues(t, 1, page.TotalPages)
	})

	t.Run("Page with multiple criteria", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		b1, err := s.Create(ctx, "b")
		require.NoError(t, err)
		a1, err := s.Create(ctx, "a")
		require.NoError(t, err)
		b2, err := s.Create(ctx, "b")
		require.NoError(t, err)
		a2, err := s.Create(ctx, "a")
		require.NoError(t, err)

		page, err := s.Page(ctx, models.PageRequest{
			Page: 0,
			Size: 10,
			Sort: []models.Sort{
				{Field: models.SortByText, Direction: models.Asc},
				{Field: models.SortByID, Direction: models.Desc},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{a2.ID, a1.ID, b2.ID, b1.ID}, memoIDs(page.Memos))

		// Ties on text fall back to ascending id
		page, err = s.Page(ctx, models.PageRequest{
			Page: 0,
			Size: 10,
			Sort: []models.Sort{{Field: models.SortByText, Direction: models.Desc}},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{b1.ID, b2.ID, a1.ID, a2.ID}, memoIDs(page.Memos))
	})

	t.Run("Page rejects invalid requests", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		invalid := []models.PageRequest{
			{Page: -1, Size: 10},
			{Page: 0, Size: 0},
			{Page: 0, Size: 10, Sort: []models.Sort{{Field: "created_at", Direction: models.Asc}}},
			{Page: 0, Size: 10, Sort: []models.Sort{{Field: models.SortByID, Direction: "sideways"}}},
		}
		for _, req := range invalid {
			_, err := s.Page(ctx, req)
			requireValidationError(t, err)
		}
	})

	t.Run("Concurrent creates never share an id", func(t *testing.T) {
		s := open(t, newStore)
		ctx := context.Background()

		const workers, perWorker = 8, 10
		var (
			mu  sync.Mutex
			ids = make(map[int64]bool)
			wg  sync.WaitGroup
		)
		errs := make(chan error, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					memo, err := s.Create(ctx, fmt.Sprintf("worker %d memo %d", w, i))
					if err != nil {
						errs <- err
						continue
					}
					mu.Lock()
					ids[memo.ID] = true
					mu.Unlock()
				}
			}(w)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		assert.Len(t, ids, workers*perWorker)
	})
}

func open(t *testing.T, newStore NewStore) storage.Store {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// seed creates n memos in sequence and returns their ids in creation order
func seed(t *testing.T, s storage.Store, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		memo, err := s.Create(context.Background(), fmt.Sprintf("sample - %d", i))
		require.NoError(t, err)
		ids = append(ids, memo.ID)
	}
	return ids
}

func memoIDs(memos []models.Memo) []int64 {
	ids := make([]int64, 0, len(memos))
	for _, memo := range memos {
		ids = append(ids, memo.ID)
	}
	return ids
}

func requireValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs), "expected validation error, got %v", err)
}
