// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package diagnostics records a write-only report for every search: which
// platforms ran, how they settled and how many listings each produced.
// Reports are for operators; nothing in the search path reads them back.
package diagnostics

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/provider"
)

// Sources of a search.
const (
	SourceHTTP   = "http"
	SourceCanary = "canary"
	SourceCLI    = "cli"
)

// Report summarises one search.
type Report struct {
	ID         string                   `json:"id"`
	Keyword    string                   `json:"keyword"`
	Source     string                   `json:"source"`
	StartedAt  time.Time                `json:"startedAt"`
	DurationMS int64                    `json:"durationMs"`
	Total      int                      `json:"total"`
	Outcomes   []schema.PlatformOutcome `json:"outcomes"`
}

// NewReport builds a report for a finished search.
func NewReport(keyword, source string, startedAt time.Time, res *schema.SearchResult) *Report {
	r := &Report{
		ID:         "srch_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Keyword:    keyword,
		Source:     source,
		StartedAt:  startedAt.UTC(),
		DurationMS: time.Since(startedAt).Milliseconds(),
		Outcomes:   []schema.PlatformOutcome{},
	}
	if res != nil {
		r.Total = len(res.Listings)
		r.Outcomes = res.Outcomes
	}
	return r
}

// Recorder persists reports.
type Recorder interface {
	Record(ctx context.Context, r *Report) error
	Close() error
}

// Providers is the registry of recorder backends. The dependency is the
// logger handed to the backend.
var Providers = provider.NewRegistry[Recorder, *logging.Logger]("diagnostics")

func init() {
	Providers.Register("none", func(_ context.Context, _ *logging.Logger, _ map[string]string) (Recorder, error) {
		return Nop{}, nil
	})
	Providers.Register("log", func(_ context.Context, logger *logging.Logger, _ map[string]string) (Recorder, error) {
		return NewLogRecorder(logger), nil
	})
}

// Nop discards reports.
type Nop struct{}

func (Nop) Record(context.Context, *Report) error { return nil }
func (Nop) Close() error                          { return nil }
