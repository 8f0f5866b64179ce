package event

import (
	"math"
	"sort"
)

// Paging defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Page*Size within int for any valid size
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest selects one zero-based page of a result set.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page and size into their valid ranges.
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

// Offset is the number of records before the first one on this page.
// It saturates at math.MaxInt instead of overflowing.
func (r PageRequest) Offset() int {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	if r.Page > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Page * r.Size
}

// Page is one slice of a search result plus the total match count.
type Page struct {
	Items   []*Event
	Total   int64
	Request PageRequest
}

// TotalPages returns how many pages the whole result spans.
func (p *Page) TotalPages() int {
	if p.Request.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Request.Size) - 1) / int64(p.Request.Size))
}

func (p *Page) IsFirst() bool {
	return p.Request.Page == 0
}

func (p *Page) IsLast() bool {
	return p.Request.Page+1 >= p.TotalPages()
}

// SortForListing orders events by start time, then id.
func SortForListing(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].StartAt.Equal(events[j].StartAt) {
			return events[i].StartAt.Before(events[j].StartAt)
		}
		return events[i].ID < events[j].ID
	})
}
