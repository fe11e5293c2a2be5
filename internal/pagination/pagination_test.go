package pagination

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(n int) SliceSource[int] {
	s := make(SliceSource[int], n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"1":   1,
		"3":   3,
		"abc": 1,
		"0":   1,
		"-4":  1,
		" 2 ": 2,
		"2.5": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParsePage(raw), "raw %q", raw)
	}
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		total      int
		raw        string
		wantNumber int
		wantPages  int
		wantItems  []int
		wantNext   bool
		wantPrev   bool
	}{
		{"first page", 25, "", 1, 3, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, true, false},
		{"middle page", 25, "2", 2, 3, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, true, true},
		{"last partial page", 25, "3", 3, 3, []int{21, 22, 23, 24, 25}, false, true},
		{"past the end clamps to last", 25, "99", 3, 3, []int{21, 22, 23, 24, 25}, false, true},
		{"non-numeric is first", 25, "abc", 1, 3, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, true, false},
		{"zero is first", 25, "0", 1, 3, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, true, false},
		{"exact multiple", 20, "2", 2, 2, []int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, false, true},
		{"empty sequence", 0, "5", 1, 1, []int{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Paginate[int](ctx, numbers(tt.total), DefaultPageSize, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.total, page.TotalItems)
			assert.Equal(t, tt.wantItems, page.Items)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
		})
	}
}

func TestPaginate_PagesPartitionSequence(t *testing.T) {
	ctx := context.Background()
	src := numbers(37)

	var seen []int
	first, err := Paginate[int](ctx, src, 5, "1")
	require.NoError(t, err)
	for n := 1; n <= first.TotalPages; n++ {
		page, err := Paginate[int](ctx, src, 5, strconv.Itoa(n))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 5)
		seen = append(seen, page.Items...)
	}
	assert.Equal(t, []int(src), seen)
}

func TestPaginate_DefaultSize(t *testing.T) {
	page, err := Paginate[int](context.Background(), numbers(15), 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultPageSize)
}

type failingSource struct{ countErr, sliceErr error }

func (f failingSource) Count(context.Context) (int, error) { return 3, f.countErr }
func (f failingSource) Slice(context.Context, int, int) ([]int, error) {
	return nil, f.sliceErr
}

func TestPaginate_PropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Paginate[int](context.Background(), failingSource{countErr: boom}, 10, "")
	assert.ErrorIs(t, err, boom)

	_, err = Paginate[int](context.Background(), failingSource{sliceErr: boom}, 10, "")
	assert.ErrorIs(t, err, boom)
}
