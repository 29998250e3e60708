package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildListOptions(f *testing.F) {
	seeds := []string{
		"title=Inception&year=2010&sortBy=title",
		"sortBy=-yearofrelease&page=2&pageSize=5",
		"year=abc",
		"page=-1",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		options, err := buildListOptions(values)
		if err != nil {
			return
		}
		if values.Get("page") == "" && options.Page != defaultPage {
			t.Fatalf("page default lost: %+v", options)
		}
		if values.Get("pageSize") == "" && options.PageSize != defaultPageSize {
			t.Fatalf("pageSize default lost: %+v", options)
		}
	})
}
