package entity

import "fmt"

// Page is one page of a list. Page numbers start at 1.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// TotalPages is at least 1 so an empty table still renders a single page.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}

	return (p.Total + p.Limit - 1) / p.Limit
}

// RangeLabel renders the pagination text, e.g. "1 to 10 of 10".
func (p Page[T]) RangeLabel() string {
	if p.Total == 0 || len(p.Items) == 0 {
		return fmt.Sprintf("0 to 0 of %d", p.Total)
	}

	first := (p.Page-1)*p.Limit + 1
	last := first + len(p.Items) - 1

	return fmt.Sprintf("%d to %d of %d", first, last, p.Total)
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}
