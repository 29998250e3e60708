package domain

import (
	"strconv"
	"strings"
	"testing"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		year  int
		want  string
	}{
		{"simple", "The Matrix", 1999, "the-matrix-1999"},
		{"punctuation stripped", "The Matrix!", 1999, "the-matrix-1999"},
		{"mixed case", "InCepTion", 2010, "inception-2010"},
		{"digits kept", "2 Fast 2 Furious", 2003, "2-fast-2-furious-2003"},
		{"underscore and hyphen kept", "spider_man - far", 2019, "spider_man---far-2019"},
		{"unicode stripped", "Amélie", 2001, "amlie-2001"},
		{"empty title", "", 2020, "-2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSlug(tt.title, tt.year)
			if got != tt.want {
				t.Fatalf("DeriveSlug(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
			}
			// Deterministic: a second derivation must agree.
			if again := DeriveSlug(tt.title, tt.year); again != got {
				t.Fatalf("DeriveSlug not deterministic: %q vs %q", got, again)
			}
			if !strings.HasSuffix(got, "-"+strconv.Itoa(tt.year)) {
				t.Fatalf("slug %q does not end with year suffix", got)
			}
		})
	}
}

func TestMovieSlugMatchesDeriveSlug(t *testing.T) {
	m := Movie{Title: "Blade Runner 2049", YearOfRelease: 2017}
	if m.Slug() != DeriveSlug(m.Title, m.YearOfRelease) {
		t.Fatalf("Movie.Slug() = %q, want %q", m.Slug(), DeriveSlug(m.Title, m.YearOfRelease))
	}
}

func FuzzDeriveSlug(f *testing.F) {
	seeds := []string{"The Matrix", "Amélie", "", "  spaced  out  ", "!!!"}
	for _, seed := range seeds {
		f.Add(seed, 1999)
	}

	f.Fuzz(func(t *testing.T, title string, year int) {
		slug := DeriveSlug(title, year)
		if slug != DeriveSlug(title, year) {
			t.Fatalf("non-deterministic slug for %q/%d", title, year)
		}
		if !strings.HasSuffix(slug, "-"+strconv.Itoa(year)) {
			t.Fatalf("slug %q missing year suffix", slug)
		}
	})
}
