// Package pagination splits ordered sequences into fixed-size numbered pages.
package pagination

import (
	"context"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items per feed page.
const DefaultPageSize = 10

// Source is an ordered sequence that can be counted and sliced without
// loading it whole.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one window of a Source. Number is 1-based and TotalPages is never
// below 1, so an empty sequence has a single empty page.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ParsePage reads a raw page parameter. Absent, non-numeric and non-positive
// values all mean the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate returns the requested page of src. A page number past the end is
// clamped to the last page. A non-positive pageSize uses DefaultPageSize.
func Paginate[T any](ctx context.Context, src Source[T], pageSize int, rawPage string) (*Page[T], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := 1
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	number := min(ParsePage(rawPage), totalPages)

	items := []T{}
	if total > 0 {
		items, err = src.Slice(ctx, (number-1)*pageSize, pageSize)
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:       items,
		Number:      number,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}, nil
}

// SliceSource adapts an in-memory slice to Source.
type SliceSource[T any] []T

func (s SliceSource[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

func (s SliceSource[T]) Slice(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := min(offset+limit, len(s))
	return s[offset:end], nil
}
