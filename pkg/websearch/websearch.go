// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package websearch queries general-purpose web search APIs. The
// "websearch" job platform uses it to find postings on sites that have no
// dedicated adapter.
package websearch

import (
	"context"
	"net/http"

	"github.com/leseb/jobsearch-gw/pkg/provider"
)

// Providers is the registry of web search backends. The dependency is the
// HTTP client to use; nil means a fresh default client.
var Providers = provider.NewRegistry[Provider, *http.Client]("web_search")

// SearchResult represents a single web search result.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Provider performs web searches against an external API.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

func clientOrDefault(hc *http.Client) *http.Client {
	if hc == nil {
		return &http.Client{}
	}
	return hc
}

func paramOr(params map[string]string, key, def string) string {
	if v := params[key]; v != "" {
		return v
	}
	return def
}
