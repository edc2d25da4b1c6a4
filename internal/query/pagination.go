package query

// Pagination is the page metadata returned alongside every list result.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	NextPage     *int  `json:"nextPage"`
	PrevPage     *int  `json:"prevPage"`
}

// NewPagination computes page metadata for a total match count. An empty
// match set yields zero pages with both navigation flags false, whatever
// page was requested.
func NewPagination(page Page, totalItems int64) Pagination {
	p := Pagination{
		CurrentPage:  page.Number,
		ItemsPerPage: page.Limit,
		TotalItems:   totalItems,
	}
	if totalItems == 0 {
		return p
	}

	p.TotalPages = int((totalItems + int64(page.Limit) - 1) / int64(page.Limit))
	p.HasNextPage = page.Number < p.TotalPages
	p.HasPrevPage = page.Number > 1
	if p.HasNextPage {
		next := page.Number + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page.Number - 1
		p.PrevPage = &prev
	}
	return p
}
