package domain

// Pagination is the envelope the API attaches to list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a single page of a paginated list.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Pagination.Page < p.Pagination.TotalPages
}
