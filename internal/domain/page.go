package domain

// PaginationParams carries page/limit values from the HTTP layer to list operations.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil pointers fall back to page=1, limit=50.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 50}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 100)
	}
	return p
}

// Window returns the [start, end) bounds of the current page within a
// result set of n items. Pages past the end yield an empty window.
func (p PaginationParams) Window(n int) (start, end int) {
	start = min((p.Page-1)*p.Limit, n)
	end = min(start+p.Limit, n)
	return start, end
}
