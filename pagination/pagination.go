// Package pagination slices ordered result sets into pages.
package pagination

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// All is the page size that selects every row on one page.
const All = "All"

// Request is a normalized page request. Size is ignored when All is set.
type Request struct {
	Page int
	Size int
	All  bool
}

// NewRequest normalizes wire values. page and size may be integers, floats
// or numeric strings; size may also be "All". A nil size means All and a
// nil page means 1. Zero, negative or non-numeric values become 1.
func NewRequest(page, size any) Request {
	r := Request{Page: coerce(page), Size: 1}
	switch s := size.(type) {
	case nil:
		r.All = true
	case string:
		if strings.EqualFold(strings.TrimSpace(s), All) {
			r.All = true
			break
		}
		r.Size = coerce(s)
	default:
		r.Size = coerce(s)
	}
	return r
}

func coerce(v any) int {
	var n int64
	switch v := v.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 1
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 1
		}
		n = i
	default:
		return 1
	}
	if n < 1 || n > math.MaxInt32 {
		return 1
	}
	return int(n)
}

// Window is the page selected by a request over a known total.
type Window struct {
	Total      int
	Page       int
	Pages      int
	Size       int
	HasNext    bool
	HasPrev    bool
	StartIndex int // 1-based, inclusive; 0 when Total is 0.
	EndIndex   int // 1-based, inclusive; 0 when Total is 0.
}

// Offset returns the number of rows before the page.
func (w Window) Offset() int { return (w.Page - 1) * w.Size }

// Limit returns the maximum number of rows on the page.
func (w Window) Limit() int { return w.Size }

// Paginate selects the page of r over total rows. Out-of-range pages clamp
// to the last page.
func Paginate(total int, r Request) Window {
	if total < 0 {
		total = 0
	}
	size := r.Size
	if r.All {
		size = total
	}
	if size < 1 {
		size = 1
	}
	pages := 1
	if total > 0 {
		pages = (total + size - 1) / size
	}
	page := r.Page
	switch {
	case page < 1:
		page = 1
	case page > pages:
		page = pages
	}
	w := Window{
		Total:   total,
		Page:    page,
		Pages:   pages,
		Size:    size,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
	if total > 0 {
		w.StartIndex = w.Offset() + 1
		w.EndIndex = min(page*size, total)
	}
	return w
}

// Result is one page of items with its metadata.
type Result[T any] struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Pages      int  `json:"pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	StartIndex int  `json:"index_start_obj"`
	EndIndex   int  `json:"index_end_obj"`
	Items      []T  `json:"objects"`
}

// NewResult attaches the items loaded for w.
func NewResult[T any](w Window, items []T) *Result[T] {
	return &Result[T]{
		Total:      w.Total,
		Page:       w.Page,
		Pages:      w.Pages,
		HasNext:    w.HasNext,
		HasPrev:    w.HasPrev,
		StartIndex: w.StartIndex,
		EndIndex:   w.EndIndex,
		Items:      items,
	}
}

// Slice paginates an in-memory ordered result set.
func Slice[T any](items []T, r Request) *Result[T] {
	w := Paginate(len(items), r)
	if w.Total == 0 {
		return NewResult[T](w, nil)
	}
	return NewResult(w, items[w.StartIndex-1:w.EndIndex])
}
