package httpserver

import (
	"net/url"
	"testing"

	"github.com/filmgrid/movies-api/internal/domain"
)

func TestBuildListOptions(t *testing.T) {
	values, _ := url.ParseQuery("title= Matrix &year=1999&sortBy=title&page=2&pageSize=5")

	options, err := buildListOptions(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options.Title == nil || *options.Title != "Matrix" {
		t.Fatalf("title not trimmed: %+v", options.Title)
	}
	if options.YearOfRelease == nil || *options.YearOfRelease != 1999 {
		t.Fatalf("year parse failed: %+v", options.YearOfRelease)
	}
	if options.SortField != "title" || options.SortOrder != domain.SortOrderAscending {
		t.Fatalf("sort parse failed: %q %v", options.SortField, options.SortOrder)
	}
	if options.Page != 2 || options.PageSize != 5 {
		t.Fatalf("paging parse failed: page %d size %d", options.Page, options.PageSize)
	}
}

func TestBuildListOptions_Defaults(t *testing.T) {
	options, err := buildListOptions(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options.Page != defaultPage || options.PageSize != defaultPageSize {
		t.Fatalf("defaults = page %d size %d", options.Page, options.PageSize)
	}
	if options.Title != nil || options.YearOfRelease != nil {
		t.Fatalf("empty query must leave filters unset")
	}
	if options.SortField != "" || options.SortOrder != domain.SortOrderUnsorted {
		t.Fatalf("empty query must leave sorting unset")
	}
}

func TestBuildListOptions_DescendingPrefix(t *testing.T) {
	values, _ := url.ParseQuery("sortBy=-yearofrelease")
	options, err := buildListOptions(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options.SortField != "yearofrelease" || options.SortOrder != domain.SortOrderDescending {
		t.Fatalf("descending parse failed: %q %v", options.SortField, options.SortOrder)
	}
}

func TestBuildListOptions_InvalidValues(t *testing.T) {
	for _, raw := range []string{"year=abc", "page=abc", "pageSize=abc"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildListOptions(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
