package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geodepot/geodepot/pagination"
)

func TestNormalize(t *testing.T) {
	cfg := pagination.DefaultConfig()

	tests := []struct {
		name       string
		in         pagination.Params
		wantLimit  int
		wantOffset int
		wantPage   int
		wantSize   int
	}{
		{
			name:       "page and size translate to a window",
			in:         pagination.Params{Page: 3, Size: 15},
			wantLimit:  15,
			wantOffset: 30,
			wantPage:   3,
			wantSize:   15,
		},
		{
			name:       "limit and offset translate to a page",
			in:         pagination.Params{Limit: 25, Offset: 50},
			wantLimit:  25,
			wantOffset: 50,
			wantPage:   3,
			wantSize:   25,
		},
		{
			name:       "empty params get first page at default size",
			in:         pagination.Params{},
			wantLimit:  20,
			wantOffset: 0,
			wantPage:   1,
			wantSize:   20,
		},
		{
			name:       "size above the cap is clamped",
			in:         pagination.Params{Page: 2, Size: 500},
			wantLimit:  100,
			wantOffset: 100,
			wantPage:   2,
			wantSize:   100,
		},
		{
			name:       "limit above the cap is clamped",
			in:         pagination.Params{Limit: 9000, Offset: 10},
			wantLimit:  100,
			wantOffset: 10,
			wantPage:   1,
			wantSize:   100,
		},
		{
			name:       "page and size win when both styles are set",
			in:         pagination.Params{Page: 2, Size: 10, Limit: 50, Offset: 5},
			wantLimit:  10,
			wantOffset: 10,
			wantPage:   2,
			wantSize:   10,
		},
		{
			name:       "negative values are treated as unset",
			in:         pagination.Params{Page: -4, Offset: -1},
			wantLimit:  20,
			wantOffset: 0,
			wantPage:   1,
			wantSize:   20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize(cfg)

			limit, offset := p.ToLimitOffset()
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)

			page, size := p.ToPageSize()
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestNewResponse(t *testing.T) {
	cfg := pagination.DefaultConfig()

	tests := []struct {
		name        string
		in          pagination.Params
		total       int64
		wantPages   int
		wantHasNext bool
		wantHasPrev bool
	}{
		{
			name:        "middle page sees neighbours on both sides",
			in:          pagination.Params{Page: 2, Size: 10},
			total:       25,
			wantPages:   3,
			wantHasNext: true,
			wantHasPrev: true,
		},
		{
			name:        "first page of many has only a next",
			in:          pagination.Params{Page: 1, Size: 10},
			total:       25,
			wantPages:   3,
			wantHasNext: true,
			wantHasPrev: false,
		},
		{
			name:        "last page has only a previous",
			in:          pagination.Params{Page: 3, Size: 10},
			total:       25,
			wantPages:   3,
			wantHasNext: false,
			wantHasPrev: true,
		},
		{
			name:        "total exactly one page",
			in:          pagination.Params{Page: 1, Size: 10},
			total:       10,
			wantPages:   1,
			wantHasNext: false,
			wantHasPrev: false,
		},
		{
			name:        "empty result still reports one page",
			in:          pagination.Params{Page: 1, Size: 10},
			total:       0,
			wantPages:   1,
			wantHasNext: false,
			wantHasPrev: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize(cfg)

			resp := p.NewResponse(tt.total)
			assert.Equal(t, tt.total, resp.Total)
			assert.Equal(t, tt.wantPages, resp.Pages)
			assert.Equal(t, tt.wantHasNext, resp.HasNext)
			assert.Equal(t, tt.wantHasPrev, resp.HasPrev)
		})
	}
}
