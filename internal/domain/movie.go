package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var slugStrip = regexp.MustCompile("[^a-zA-Z0-9 _-]")

// Movie is the canonical movie entity. Rating and UserRating are computed
// from the ratings table at read time and never persisted.
type Movie struct {
	ID            uuid.UUID `validate:"required"`
	Title         string    `validate:"required"`
	YearOfRelease int       `validate:"required,notfuture"`
	Genres        []string  `validate:"dive,required"`
	Rating        *float64
	UserRating    *int
}

// Slug returns the canonical URL-safe identifier derived from title and
// year. The movies table carries a unique index on the persisted value, so
// two movies may never normalize to the same slug.
func (m Movie) Slug() string {
	return DeriveSlug(m.Title, m.YearOfRelease)
}

// DeriveSlug strips every character outside [A-Za-z0-9 _-], lowercases the
// rest, replaces spaces with hyphens and appends the release year. Pure and
// deterministic.
func DeriveSlug(title string, year int) string {
	slugged := strings.ReplaceAll(strings.ToLower(slugStrip.ReplaceAllString(title, "")), " ", "-")
	return slugged + "-" + strconv.Itoa(year)
}
