package query

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Pagination describes a 1-indexed page request.
type Pagination struct {
	PageSize   int
	PageNumber int
}

// Normalize clamps the pagination to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.PageNumber <= 0 {
		p.PageNumber = 1
	}
	return p
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	p = p.Normalize()
	return (p.PageNumber - 1) * p.PageSize
}
