package dashboard

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Page size bounds of every table.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortKind decides how a column compares.
type SortKind int

const (
	SortText SortKind = iota
	SortNumeric
)

// Sort directions as they appear in the query string.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Column describes one table column over rows of type T.
type Column[T any] struct {
	Key    string
	Header string
	Kind   SortKind
	// Cell renders the visible text; the filter matches against it.
	Cell func(T) string
	// Value orders SortNumeric columns.
	Value func(T) float64
}

// Query is the per-table state carried in that table's query string.
type Query struct {
	Filter string
	Sort   string
	Dir    string
	Page   int // 1-based
	Size   int
}

// ParseQuery reads q, sort, dir, page and size. Missing or bad values fall
// back to defaults; Size is clamped to [1, MaxPageSize].
func ParseQuery(v url.Values) Query {
	q := Query{
		Filter: strings.TrimSpace(v.Get("q")),
		Sort:   v.Get("sort"),
		Dir:    Asc,
		Page:   1,
		Size:   DefaultPageSize,
	}
	if strings.EqualFold(v.Get("dir"), Desc) {
		q.Dir = Desc
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = p
	}
	if s, err := strconv.Atoi(v.Get("size")); err == nil && s > 0 {
		q.Size = min(s, MaxPageSize)
	}
	return q
}

// Values encodes q back into query parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("q", q.Filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
		v.Set("dir", q.Dir)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size != DefaultPageSize && q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	return v
}

// Page is one page of filtered and sorted rows.
type Page[T any] struct {
	Rows      []T
	Total     int // rows after filtering
	Page      int
	PageCount int
	Size      int
	HasPrev   bool
	HasNext   bool
}

// Table holds the column set of one resource table.
type Table[T any] struct {
	Columns []Column[T]
}

func (t Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Filter keeps rows where any visible cell contains needle, ignoring case.
func (t Table[T]) Filter(rows []T, needle string) []T {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		for _, c := range t.Columns {
			if strings.Contains(strings.ToLower(c.Cell(r)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Sort orders rows by the column key. Ties keep their input order; an
// unknown key leaves rows untouched.
func (t Table[T]) Sort(rows []T, key, dir string) []T {
	col, ok := t.column(key)
	if !ok {
		return rows
	}
	out := make([]T, len(rows))
	copy(out, rows)

	desc := dir == Desc
	less := func(a, b T) int {
		if col.Kind == SortNumeric && col.Value != nil {
			va, vb := col.Value(a), col.Value(b)
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		}
		return strings.Compare(strings.ToLower(col.Cell(a)), strings.ToLower(col.Cell(b)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Apply filters, sorts and paginates rows. The page index is clamped to
// the valid range.
func (t Table[T]) Apply(rows []T, q Query) Page[T] {
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	filtered := t.Sort(t.Filter(rows, q.Filter), q.Sort, q.Dir)
	total := len(filtered)
	pageCount := max(1, (total+size-1)/size)
	page := min(max(q.Page, 1), pageCount)

	start := (page - 1) * size
	end := min(start+size, total)

	return Page[T]{
		Rows:      filtered[start:end],
		Total:     total,
		Page:      page,
		PageCount: pageCount,
		Size:      size,
		HasPrev:   page > 1,
		HasNext:   page < pageCount,
	}
}
