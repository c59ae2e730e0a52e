package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/cruddals/pagination"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name       string
		page, size any
		want       pagination.Request
	}{
		{"Ints", 2, 10, pagination.Request{Page: 2, Size: 10}},
		{"Floats", 2.0, 10.0, pagination.Request{Page: 2, Size: 10}},
		{"Strings", "3", " 5 ", pagination.Request{Page: 3, Size: 5}},
		{"All", 1, "All", pagination.Request{Page: 1, Size: 1, All: true}},
		{"NilSize", nil, nil, pagination.Request{Page: 1, Size: 1, All: true}},
		{"Zero", 0, 0, pagination.Request{Page: 1, Size: 1}},
		{"Negative", -2, -5, pagination.Request{Page: 1, Size: 1}},
		{"NonNumeric", "x", "y", pagination.Request{Page: 1, Size: 1}},
		{"Unknown", struct{}{}, true, pagination.Request{Page: 1, Size: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.NewRequest(tt.page, tt.size))
		})
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		total int
		req   pagination.Request
		want  pagination.Window
	}{
		{
			name:  "LastPage",
			total: 25,
			req:   pagination.NewRequest(3, 10),
			want:  pagination.Window{Total: 25, Page: 3, Pages: 3, Size: 10, HasPrev: true, StartIndex: 21, EndIndex: 25},
		},
		{
			name:  "FirstPage",
			total: 25,
			req:   pagination.NewRequest(1, 10),
			want:  pagination.Window{Total: 25, Page: 1, Pages: 3, Size: 10, HasNext: true, StartIndex: 1, EndIndex: 10},
		},
		{
			name:  "ClampHigh",
			total: 25,
			req:   pagination.NewRequest(9, 10),
			want:  pagination.Window{Total: 25, Page: 3, Pages: 3, Size: 10, HasPrev: true, StartIndex: 21, EndIndex: 25},
		},
		{
			name:  "ClampLow",
			total: 25,
			req:   pagination.Request{Page: -1, Size: 10},
			want:  pagination.Window{Total: 25, Page: 1, Pages: 3, Size: 10, HasNext: true, StartIndex: 1, EndIndex: 10},
		},
		{
			name:  "All",
			total: 7,
			req:   pagination.NewRequest(1, "All"),
			want:  pagination.Window{Total: 7, Page: 1, Pages: 1, Size: 7, StartIndex: 1, EndIndex: 7},
		},
		{
			name:  "Empty",
			total: 0,
			req:   pagination.NewRequest(4, "All"),
			want:  pagination.Window{Page: 1, Pages: 1, Size: 1},
		},
		{
			name:  "Exact",
			total: 20,
			req:   pagination.NewRequest(2, 10),
			want:  pagination.Window{Total: 20, Page: 2, Pages: 2, Size: 10, HasPrev: true, StartIndex: 11, EndIndex: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.Paginate(tt.total, tt.req))
		})
	}
}

func TestWindowBounds(t *testing.T) {
	w := pagination.Paginate(25, pagination.NewRequest(3, 10))
	assert.Equal(t, 20, w.Offset())
	assert.Equal(t, 10, w.Limit())
}

func TestSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}
	r := pagination.Slice(items, pagination.NewRequest(3, 10))
	assert.Equal(t, []int{21, 22, 23, 24, 25}, r.Items)
	assert.Equal(t, 3, r.Pages)
	assert.False(t, r.HasNext)
	assert.True(t, r.HasPrev)

	empty := pagination.Slice([]int{}, pagination.NewRequest(1, 10))
	assert.Nil(t, empty.Items)
	assert.Equal(t, 0, empty.StartIndex)
	assert.Equal(t, 0, empty.EndIndex)
}
