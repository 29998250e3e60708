package domain

import "github.com/google/uuid"

// SortOrder controls the direction of a sorted listing.
type SortOrder int

const (
	SortOrderUnsorted SortOrder = iota
	SortOrderAscending
	SortOrderDescending
)

// GetAllMoviesOptions is the query specification for the movie listing.
// Nil filters are no-ops. UserID, when set, drives the per-caller rating
// join so the listing can report the caller's own rating alongside the
// global average.
type GetAllMoviesOptions struct {
	Title         *string
	YearOfRelease *int       `validate:"omitempty,notfuture"`
	UserID        *uuid.UUID
	SortField     string `validate:"omitempty,sortfield"`
	SortOrder     SortOrder
	Page          int `validate:"gte=1"`
	PageSize      int `validate:"gte=1,lte=15"`
}
