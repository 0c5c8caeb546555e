package models

import (
	"math"
	"memo-store/validator"
	"strings"
)

// MaxTextLength is the longest memo text accepted, counted in characters
const MaxTextLength = 200

const textRules = "max=200"

type Memo struct {
	ID   int64  `json:"id" db:"id"`
	Text string `json:"text" db:"text"`
}

// NewMemo builds an unsaved memo, rejecting text that cannot be stored.
// The ID stays zero until a store assigns one.
func NewMemo(text string) (*Memo, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}
	return &Memo{Text: text}, nil
}

// ValidateText checks text against the column constraint
func ValidateText(text string) error {
	return validator.Default().Var("text", text, textRules)
}

type SortField string

const (
	SortByID   SortField = "id"
	SortByText SortField = "text"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is one ordering criterion of a page request
type Sort struct {
	Field     SortField `json:"field" validate:"required,sortfield"`
	Direction Direction `json:"direction" validate:"required,sortdir"`
}

// PageRequest selects a 0-indexed page of memos under an ordering
type PageRequest struct {
	Page int    `json:"page" validate:"gte=0"`
	Size int    `json:"size" validate:"gte=1"`
	Sort []Sort `json:"sort" validate:"dive"`
}

func (r PageRequest) Validate() error {
	return validator.Default().Validate(r)
}

// Offset is the number of rows preceding the requested page. ok is false when
// that number does not fit in an int64, which puts the page past any store.
func (r PageRequest) Offset() (offset int64, ok bool) {
	if r.Size > 0 && int64(r.Page) > math.MaxInt64/int64(r.Size) {
		return 0, false
	}
	return int64(r.Page) * int64(r.Size), true
}

// PastEnd reports whether the page starts at or after the last of total memos
func (r PageRequest) PastEnd(total int64) bool {
	offset, ok := r.Offset()
	return !ok || offset >= total
}

// OrderBy returns the effective ordering. Without criteria memos come back in
// insertion order (ascending id); when id is not among the criteria it is
// appended ascending so ties on text still resolve deterministically.
func (r PageRequest) OrderBy() []Sort {
	order := make([]Sort, 0, len(r.Sort)+1)
	hasID := false
	for _, s := range r.Sort {
		if s.Field == SortByID {
			hasID = true
		}
		order = append(order, s)
	}
	if !hasID {
		order = append(order, Sort{Field: SortByID, Direction: Asc})
	}
	return order
}

// Page is one slice of the memo collection plus totals over the whole set
type Page struct {
	Memos         []Memo `json:"memos"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"total_elements"`
	TotalPages    int64  `json:"total_pages"`
}

// NewPage assembles a page result for req from the rows and the total count
func NewPage(req PageRequest, memos []Memo, total int64) *Page {
	if memos == nil {
		memos = make([]Memo, 0)
	}
	var pages int64
	if req.Size > 0 {
		pages = total / int64(req.Size)
		if total%int64(req.Size) != 0 {
			pages++
		}
	}
	return &Page{
		Memos:         memos,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// ParseSort reads sort criteria written as "field" or "field,direction",
// e.g. "id,desc". Direction defaults to ascending. Unknown names are kept
// verbatim so validation can report them.
func ParseSort(values []string) []Sort {
	var sorts []Sort
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		field, dir, found := strings.Cut(value, ",")
		s := Sort{
			Field:     SortField(strings.ToLower(strings.TrimSpace(field))),
			Direction: Asc,
		}
		if found {
			s.Direction = Direction(strings.ToLower(strings.TrimSpace(dir)))
		}
		sorts = append(sorts, s)
	}
	return sorts
}

type CreateMemoRequest struct {
	Text *string `json:"text" validate:"required,max=200"`
}

type UpdateMemoRequest struct {
	Text *string `json:"text" validate:"required,max=200"`
}
