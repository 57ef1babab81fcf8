// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package searchengine implements the "websearch" platform kind: job
// postings found through a general web search API (Brave or Tavily).
package searchengine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/platform"
	"github.com/leseb/jobsearch-gw/pkg/websearch"
)

// Kind is the registry name of this adapter.
const Kind = "websearch"

const (
	DefaultQueryTemplate = "%s jobs"
	DefaultMaxResults    = 10
)

func init() {
	platform.Providers.Register(Kind, func(ctx context.Context, deps platform.Deps, params map[string]string) (platform.Adapter, error) {
		p := platform.Params(params)
		backend := p.String("provider", "brave")
		max, err := p.Int("max_results", DefaultMaxResults)
		if err != nil {
			return nil, err
		}
		sp, err := websearch.Providers.New(ctx, backend, deps.HTTPClient, params)
		if err != nil {
			return nil, err
		}
		return New(sp, p.String("query_template", DefaultQueryTemplate), max), nil
	})
}

// Adapter maps web search hits to listings.
type Adapter struct {
	provider      websearch.Provider
	queryTemplate string
	maxResults    int
}

// New creates an Adapter over a web search provider.
func New(provider websearch.Provider, queryTemplate string, maxResults int) *Adapter {
	if queryTemplate == "" {
		queryTemplate = DefaultQueryTemplate
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Adapter{provider: provider, queryTemplate: queryTemplate, maxResults: maxResults}
}

// Search runs the query and maps each hit. The company is the hit's host
// name; location and posting date are unknown.
func (a *Adapter) Search(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	query := keyword
	if strings.Contains(a.queryTemplate, "%s") {
		query = fmt.Sprintf(a.queryTemplate, keyword)
	}

	hits, err := a.provider.Search(ctx, query, a.maxResults)
	if err != nil {
		return nil, err
	}

	listings := make([]schema.JobListing, 0, len(hits))
	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		listings = append(listings, schema.JobListing{
			Title:       h.Title,
			Company:     host(h.URL),
			Description: h.Snippet,
			URL:         h.URL,
		})
	}
	return listings, nil
}

func host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
