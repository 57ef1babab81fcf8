// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package searchengine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leseb/jobsearch-gw/pkg/platform"
	"github.com/leseb/jobsearch-gw/pkg/websearch"
)

type stubProvider struct {
	query string
	max   int
	hits  []websearch.SearchResult
	err   error
}

func (s *stubProvider) Search(ctx context.Context, query string, maxResults int) ([]websearch.SearchResult, error) {
	s.query, s.max = query, maxResults
	return s.hits, s.err
}

func TestSearch(t *testing.T) {
	sp := &stubProvider{hits: []websearch.SearchResult{
		{Title: "Senior Go Engineer", URL: "https://www.example.com/careers/42", Snippet: "Remote, EU"},
		{Title: "no url"},
	}}

	listings, err := New(sp, "", 0).Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if sp.query != "golang jobs" || sp.max != DefaultMaxResults {
		t.Errorf("query=%q max=%d", sp.query, sp.max)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	l := listings[0]
	if l.Company != "example.com" || l.Description != "Remote, EU" || l.Location != "" || l.PostedDate != "" {
		t.Errorf("listing = %+v", l)
	}
}

func TestSearch_ProviderError(t *testing.T) {
	sp := &stubProvider{err: errors.New("quota")}
	if _, err := New(sp, "%s", 3).Search(context.Background(), "go"); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestFactory_Tavily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["query"] != "rust careers" {
			t.Errorf("query = %v", req["query"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"title":"Rust Dev","url":"https://jobs.acme.io/1","content":"Systems"}]}`))
	}))
	defer srv.Close()

	a, err := platform.Providers.New(context.Background(), Kind, platform.Deps{HTTPClient: srv.Client()}, map[string]string{
		"provider":       "tavily",
		"api_key":        "k",
		"base_url":       srv.URL,
		"query_template": "%s careers",
	})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	listings, err := a.Search(context.Background(), "rust")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(listings) != 1 || listings[0].Company != "jobs.acme.io" {
		t.Errorf("listings = %+v", listings)
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	if _, err := platform.Providers.New(context.Background(), Kind, platform.Deps{}, map[string]string{"provider": "bing"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
