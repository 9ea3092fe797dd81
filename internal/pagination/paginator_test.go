package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logRow struct {
	id    string
	count int64
}

func (r logRow) EntityID() string { return r.id }

// sliceSource evaluates queries over rows held in creation order
type sliceSource struct {
	rows    []logRow
	locates int
	fetches int
}

func (s *sliceSource) Locate(ctx context.Context, id string) (bool, error) {
	s.locates++
	return slices.ContainsFunc(s.rows, func(r logRow) bool { return r.id == id }), nil
}

func (s *sliceSource) Fetch(ctx context.Context, q Query) ([]logRow, error) {
	s.fetches++
	ordered := slices.Clone(s.rows)
	if q.Order == Descending {
		slices.Reverse(ordered)
	}

	start := 0
	if q.After != "" {
		start = slices.IndexFunc(ordered, func(r logRow) bool { return r.id == q.After }) + 1
	}

	var out []logRow
	for _, r := range ordered[start:] {
		if len(out) == q.Limit {
			break
		}
		if matches(q.Filter, r.count) {
			out = append(out, r)
		}
	}
	return out, nil
}

// matches evaluates f in memory the way a row source does in SQL
func matches(f *Filter, value int64) bool {
	if f == nil {
		return true
	}
	return f.Operator == OpGreaterThan && value > f.Value
}

func rowID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

// fifteenRows returns rows 1..15 where every third row has a count of 0;
// the other ten rows have counts above 10.
func fifteenRows() *sliceSource {
	src := &sliceSource{}
	for i := 1; i <= 15; i++ {
		count := int64(10 + i)
		if i%3 == 0 {
			count = 0
		}
		src.rows = append(src.rows, logRow{id: rowID(i), count: count})
	}
	return src
}

func ids(rows []logRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

// follow requests the page a link points at
func follow(t *testing.T, src *sliceSource, link *string, opts Options) *Page[logRow] {
	t.Helper()
	require.NotNil(t, link)

	u, err := url.Parse(*link)
	require.NoError(t, err)

	p, err := FromQuery(u.Query(), opts)
	require.NoError(t, err)

	page, err := Paginate[logRow](context.Background(), p, src)
	require.NoError(t, err)
	return page
}

func TestPaginateWalk(t *testing.T) {
	src := fifteenRows()
	opts := Options{Limit: 2, Order: Descending, FilterFields: []string{"count"}}

	var filtered []string
	for i := 15; i >= 1; i-- {
		if i%3 != 0 {
			filtered = append(filtered, rowID(i))
		}
	}
	require.Len(t, filtered, 10)

	first := "/causes/1/activity-logs?filter[count]=gt(10)"
	page := follow(t, src, &first, opts)

	var forward [][]string
	for page.Len() > 0 {
		forward = append(forward, ids(page.Items))
		links := BuildLinks("/causes/1/activity-logs", page.Filter, page)
		assert.Nil(t, links.Last)
		page = follow(t, src, links.Next, opts)
	}

	require.Len(t, forward, 5)
	for i, got := range forward {
		assert.Equal(t, filtered[i*2:i*2+2], got, "page %d", i+1)
	}

	empty := BuildLinks("/causes/1/activity-logs", page.Filter, page)
	assert.Nil(t, empty.Prev)
	assert.Nil(t, empty.Next)

	// walk back from the last populated page
	last := fmt.Sprintf("/causes/1/activity-logs?filter[count]=gt(10)&page[cursor]=%s&page[points]=last", filtered[7])
	page = follow(t, src, &last, opts)
	require.Equal(t, forward[4], ids(page.Items))

	var backward [][]string
	for page.Len() > 0 {
		backward = append(backward, ids(page.Items))
		links := BuildLinks("/causes/1/activity-logs", page.Filter, page)
		page = follow(t, src, links.Prev, opts)
	}

	slices.Reverse(backward)
	assert.Equal(t, forward, backward)
}

func TestPaginateAscendingWithoutFilter(t *testing.T) {
	src := fifteenRows()
	p := &Paginator{Limit: 4, Order: Ascending}

	page, err := Paginate[logRow](context.Background(), p, src)
	require.NoError(t, err)
	assert.Equal(t, []string{rowID(1), rowID(2), rowID(3), rowID(4)}, ids(page.Items))

	p.Cursor = rowID(13)
	page, err = Paginate[logRow](context.Background(), p, src)
	require.NoError(t, err)
	assert.Equal(t, []string{rowID(14), rowID(15)}, ids(page.Items), "short page at the end")
}

func TestPaginateCursorOnFilteredRow(t *testing.T) {
	src := fifteenRows()
	filter := &Filter{Field: "count", Operator: OpGreaterThan, Value: 10}

	// row 9 has count 0 and is excluded by the filter
	forward := &Paginator{Limit: 2, Order: Descending, Cursor: rowID(9), Filter: filter}
	page, err := Paginate[logRow](context.Background(), forward, src)
	require.NoError(t, err)
	assert.Equal(t, []string{rowID(8), rowID(7)}, ids(page.Items))

	backward := &Paginator{Limit: 2, Order: Descending, Cursor: rowID(9), Points: PointsFirst, Filter: filter}
	page, err = Paginate[logRow](context.Background(), backward, src)
	require.NoError(t, err)
	assert.Equal(t, []string{rowID(11), rowID(10)}, ids(page.Items), "rows before the cursor, still descending")
}

func TestPaginateCursorBoundaries(t *testing.T) {
	src := fifteenRows()

	t.Run("cursor row is never included", func(t *testing.T) {
		for _, points := range []Points{PointsFirst, PointsLast} {
			p := &Paginator{Limit: 1, Order: Ascending, Cursor: rowID(5), Points: points}
			page, err := Paginate[logRow](context.Background(), p, src)
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.NotEqual(t, rowID(5), page.Items[0].id)
		}
	})

	t.Run("prev from the very first page is empty", func(t *testing.T) {
		p := &Paginator{Limit: 3, Order: Ascending}
		page, err := Paginate[logRow](context.Background(), p, src)
		require.NoError(t, err)

		links := BuildLinks("/logs", nil, page)
		require.NotNil(t, links.Prev, "prev is offered even on the first page")

		prev := follow(t, src, links.Prev, Options{Limit: 3, Order: Ascending})
		assert.Equal(t, 0, prev.Len())
	})

	t.Run("backward page near the start is short", func(t *testing.T) {
		p := &Paginator{Limit: 5, Order: Ascending, Cursor: rowID(3), Points: PointsFirst}
		page, err := Paginate[logRow](context.Background(), p, src)
		require.NoError(t, err)
		assert.Equal(t, []string{rowID(1), rowID(2)}, ids(page.Items))
	})
}

func TestPaginateUnknownCursor(t *testing.T) {
	src := fifteenRows()
	p := &Paginator{Limit: 2, Order: Descending, Cursor: rowID(99)}

	page, err := Paginate[logRow](context.Background(), p, src)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 0, src.fetches, "no fetch after a failed lookup")

	links := BuildLinks("/logs", nil, page)
	assert.Nil(t, links.Prev)
	assert.Nil(t, links.Next)
	assert.Nil(t, links.Last)
	require.NotNil(t, links.First)
	assert.Equal(t, "/logs", *links.First)
}

func TestPaginateInvalidCursor(t *testing.T) {
	src := fifteenRows()
	p := &Paginator{Limit: 2, Cursor: "not-a-uuid"}

	_, err := Paginate[logRow](context.Background(), p, src)
	require.Error(t, err)
	assert.True(t, IsInvalidCursor(err))
	assert.Equal(t, 0, src.locates, "rejected before any lookup")
}

type failingSource struct{}

func (failingSource) Locate(ctx context.Context, id string) (bool, error) {
	return false, errors.New("connection reset")
}

func (failingSource) Fetch(ctx context.Context, q Query) ([]logRow, error) {
	return nil, errors.New("connection reset")
}

func TestPaginateSourceErrors(t *testing.T) {
	_, err := Paginate[logRow](context.Background(), &Paginator{}, failingSource{})
	assert.ErrorContains(t, err, "connection reset")

	_, err = Paginate[logRow](context.Background(), &Paginator{Cursor: rowID(1)}, failingSource{})
	assert.ErrorContains(t, err, "connection reset")
}

func TestPaginateDefaultLimit(t *testing.T) {
	src := fifteenRows()
	page, err := Paginate[logRow](context.Background(), &Paginator{}, src)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, page.Len())
}
