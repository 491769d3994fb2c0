// Package pagination carries the paging inputs and outputs of list
// endpoints.
//
// Embed Params in a list request struct and Response in the matching
// response struct. Callers may address a listing either as page/size or
// as limit/offset; Normalize reconciles the two so repositories only
// ever see limit/offset and responses only ever report page/size.
package pagination

import "fmt"

// Params is the paging portion of a list request.
//
// Zero values mean "not supplied"; call Normalize before reading any
// field.
type Params struct {
	Limit  int `query:"limit"  json:"limit,omitempty"`
	Offset int `query:"offset" json:"offset,omitempty"`

	// Page is the 1-based page number, paired with Size.
	Page int `query:"page" json:"page,omitempty"`
	// Size is the number of items per page, paired with Page.
	Size int `query:"size" json:"size,omitempty"`

	// Which addressing style the caller used.
	pageAddressed bool
}

// Response is the paging portion of a list response.
type Response struct {
	// Total is the number of items across all pages.
	Total int64 `json:"total"`
	// Page is the 1-based page this response covers.
	Page int `json:"page"`
	// Size is the number of items per page.
	Size int `json:"size"`
	// Pages is the page count at this size, at least 1.
	Pages int `json:"pages"`
	// HasNext reports whether a later page exists.
	HasNext bool `json:"has_next"`
	// HasPrev reports whether an earlier page exists.
	HasPrev bool `json:"has_prev"`
}

// Config bounds what callers can request.
type Config struct {
	DefaultLimit int // limit applied when the caller supplies none
	MaxLimit     int // hard cap on limit
	DefaultSize  int // page size applied when the caller supplies none
	MaxSize      int // hard cap on page size
}

// DefaultConfig returns the bounds used by listing endpoints unless a
// caller overrides them: 20 items by default, 100 at most.
func DefaultConfig() Config {
	return Config{
		DefaultLimit: 20,
		MaxLimit:     100,
		DefaultSize:  20,
		MaxSize:      100,
	}
}

func (p *Params) suppliedPageSize() bool {
	return p.Page > 0 || p.Size > 0
}

func (p *Params) suppliedLimitOffset() bool {
	return p.Limit > 0 || p.Offset > 0
}

func clamp(v, fallback, maximum int) int {
	if v <= 0 {
		v = fallback
	}
	if v > maximum {
		v = maximum
	}
	return v
}

// Normalize fills in defaults, applies cfg's caps, and makes the two
// addressing styles agree. Page/size wins when both are supplied, and
// is also what an empty Params resolves to.
func (p *Params) Normalize(cfg Config) {
	p.pageAddressed = p.suppliedPageSize() || !p.suppliedLimitOffset()

	p.Limit = clamp(p.Limit, cfg.DefaultLimit, cfg.MaxLimit)
	p.Size = clamp(p.Size, cfg.DefaultSize, cfg.MaxSize)
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	// Derive the style the caller did not use from the one they did.
	if p.pageAddressed {
		p.Limit = p.Size
		p.Offset = (p.Page - 1) * p.Size
	} else {
		p.Size = p.Limit
		p.Page = p.Offset/p.Size + 1
	}
}

// ToLimitOffset returns the window to hand to a repository query.
func (p *Params) ToLimitOffset() (limit, offset int) {
	return p.Limit, p.Offset
}

// ToPageSize returns the page and size view of the parameters,
// computing it from limit/offset when the caller never set one.
func (p *Params) ToPageSize() (page, size int) {
	if p.pageAddressed || p.suppliedPageSize() {
		return p.Page, p.Size
	}

	size = p.Limit
	if size <= 0 {
		size = 1
	}
	return p.Offset/size + 1, size
}

// NewResponse builds the Response for these parameters given the total
// row count reported by the repository.
func (p *Params) NewResponse(total int64) Response {
	page, size := p.ToPageSize()

	pages := 1
	if size > 0 && total > int64(size) {
		pages = int((total + int64(size) - 1) / int64(size))
	}

	return Response{
		Total:   total,
		Page:    page,
		Size:    size,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// String renders the parameters in the addressing style the caller
// used, for logs.
func (p *Params) String() string {
	if p.pageAddressed || (p.suppliedPageSize() && !p.suppliedLimitOffset()) {
		return fmt.Sprintf("page=%d size=%d", p.Page, p.Size)
	}
	return fmt.Sprintf("limit=%d offset=%d", p.Limit, p.Offset)
}

// String renders the response metadata for logs.
func (r *Response) String() string {
	return fmt.Sprintf("page %d of %d (total: %d, size: %d)", r.Page, r.Pages, r.Total, r.Size)
}
