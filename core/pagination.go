package core

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type (
	// Page holds normalized list-query pagination parameters (1-based).
	Page struct {
		Number int `json:"-" query:"page"`
		Limit  int `json:"-" query:"limit"`
	}

	// Pagination is the paginated-response envelope metadata.
	Pagination struct {
		Page    int   `json:"page"`
		Limit   int   `json:"limit"`
		Total   int64 `json:"total"`
		Pages   int64 `json:"pages"`
		HasNext bool  `json:"hasNext"`
		HasPrev bool  `json:"hasPrev"`
	}
)

// Clean normalizes the page parameters: page >= 1, 1 <= limit <= 100.
func (p *Page) Clean() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
}

// Skip returns the number of records to skip for the current page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// NewPagination computes the response metadata for a page of `total` records.
func NewPagination(page Page, total int64) Pagination {
	pages := total / int64(page.Limit)
	if total%int64(page.Limit) != 0 {
		pages++
	}
	return Pagination{
		Page:    page.Number,
		Limit:   page.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page.Number) < pages,
		HasPrev: page.Number > 1,
	}
}

// Paginate bounds-checks a fully materialized result set and returns the slice
// for the requested page. Used by the in-memory repositories.
func Paginate[T any](items []T, page Page) []T {
	start := page.Skip()
	if start >= int64(len(items)) {
		return []T{}
	}
	end := start + int64(page.Limit)
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}
