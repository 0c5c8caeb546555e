package models

import (
	"errors"
	"math"
	"memo-store/validator"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemo(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantError bool
	}{
		{name: "Empty text", text: ""},
		{name: "Short text", text: "sample - 1"},
		{name: "Exactly 200 characters", text: strings.Repeat("a", 200)},
		{name: "200 multi-byte characters", text: strings.Repeat("메", 200)},
		{name: "201 characters", text: strings.Repeat("a", 201), wantError: true},
		{name: "201 multi-byte characters", text: strings.Repeat("메", 201), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memo, err := NewMemo(tt.text)

			if tt.wantError {
				var verrs validator.ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Equal(t, "text", verrs[0].Field)
				assert.Equal(t, "max", verrs[0].Tag)
				assert.Equal(t, "text must be at most 200 characters", verrs[0].Message)
				assert.Nil(t, memo)
				return
			}

			require.NoError(t, err)
			assert.Zero(t, memo.ID)
			assert.Equal(t, tt.text, memo.Text)
		})
	}
}

func TestPageRequest_OrderBy(t *testing.T) {
	tests := []struct {
		name     string
		sort     []Sort
		expected []Sort
	}{
		{
			name:     "No criteria falls back to insertion order",
			sort:     nil,
			expected: []Sort{{Field: SortByID, Direction: Asc}},
		},
		{
			name:     "Text gets an id tie-break",
			sort:     []Sort{{Field: SortByText, Direction: Desc}},
			expected: []Sort{{Field: SortByText, Direction: Desc}, {Field: SortByID, Direction: Asc}},
		},
		{
			name:     "Explicit id is kept as given",
			sort:     []Sort{{Field: SortByID, Direction: Desc}, {Field: SortByText, Direction: Asc}},
			expected: []Sort{{Field: SortByID, Direction: Desc}, {Field: SortByText, Direction: Asc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageRequest{Page: 0, Size: 10, Sort: tt.sort}
			assert.Equal(t, tt.expected, req.OrderBy())
		})
	}
}

func TestPageRequest_Validate(t *testing.T) {
	assert.NoError(t, PageRequest{Page: 0, Size: 1}.Validate())
	assert.NoError(t, PageRequest{Page: 3, Size: 10, Sort: []Sort{{Field: SortByText, Direction: Desc}}}.Validate())

	err := PageRequest{Page: -1, Size: 0}.Validate()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)

	err = PageRequest{Page: 0, Size: 5, Sort: []Sort{{Field: "mno", Direction: "up"}}}.Validate()
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestPageRequest_Offset(t *testing.T) {
	tests := []struct {
		name     string
		req      PageRequest
		expected int64
		ok       bool
	}{
		{name: "First page", req: PageRequest{Page: 0, Size: 10}, expected: 0, ok: true},
		{name: "Fourth page", req: PageRequest{Page: 3, Size: 10}, expected: 30, ok: true},
		{name: "Largest representable", req: PageRequest{Page: math.MaxInt64 / 100, Size: 100}, expected: math.MaxInt64 / 100 * 100, ok: true},
		{name: "One page further overflows", req: PageRequest{Page: math.MaxInt64/100 + 1, Size: 100}, ok: false},
		{name: "Product wrapping to zero", req: PageRequest{Page: 1 << 62, Size: 4}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, ok := tt.req.Offset()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, offset)
		})
	}
}

func TestPageRequest_PastEnd(t *testing.T) {
	assert.False(t, PageRequest{Page: 0, Size: 10}.PastEnd(1))
	assert.True(t, PageRequest{Page: 0, Size: 10}.PastEnd(0))
	assert.False(t, PageRequest{Page: 10, Size: 10}.PastEnd(101))
	assert.True(t, PageRequest{Page: 11, Size: 10}.PastEnd(101))
	assert.True(t, PageRequest{Page: math.MaxInt, Size: 100}.PastEnd(math.MaxInt64))
	assert.True(t, PageRequest{Page: 1 << 62, Size: 4}.PastEnd(3))
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		total         int64
		expectedPages int64
	}{
		{name: "Empty store", size: 10, total: 0, expectedPages: 0},
		{name: "Exact fit", size: 10, total: 100, expectedPages: 10},
		{name: "Partial last page", size: 10, total: 101, expectedPages: 11},
		{name: "Single record", size: 10, total: 1, expectedPages: 1},
		{name: "Size larger than any store", size: math.MaxInt, total: 3, expectedPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(PageRequest{Page: 0, Size: tt.size}, nil, tt.total)
			assert.Equal(t, tt.expectedPages, page.TotalPages)
			assert.NotNil(t, page.Memos)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected []Sort
	}{
		{
			name:     "Field only defaults to ascending",
			values:   []string{"id"},
			expected: []Sort{{Field: SortByID, Direction: Asc}},
		},
		{
			name:   "Repeated criteria keep their order",
			values: []string{"text,DESC", " id , asc "},
			expected: []Sort{
				{Field: SortByText, Direction: Desc},
				{Field: SortByID, Direction: Asc},
			},
		},
		{
			name:     "Blank values are skipped",
			values:   []string{"", "  "},
			expected: nil,
		},
		{
			name:     "Unknown names pass through for validation",
			values:   []string{"mno,sideways"},
			expected: []Sort{{Field: "mno", Direction: "sideways"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSort(tt.values))
		})
	}
}
