// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package services holds the application services the transports call.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/core/engine"
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
	"github.com/leseb/jobsearch-gw/pkg/mcp"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/observability/metrics"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// ErrNoToolSource is returned by ListTools when no platform talks to an MCP
// server.
var ErrNoToolSource = errors.New("no MCP platform configured")

// recordTimeout bounds writing one diagnostics report.
const recordTimeout = 5 * time.Second

// ToolLister is implemented by adapters backed by an MCP server.
type ToolLister interface {
	ListTools(ctx context.Context) ([]mcp.ToolInfo, error)
}

// SearchService runs searches through the aggregator and reports their
// outcomes to metrics and the diagnostics recorder.
type SearchService struct {
	aggregator *engine.Aggregator
	metrics    *metrics.Metrics
	recorder   diagnostics.Recorder
	logger     *logging.Logger
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithMetrics counts outcomes in m.
func WithMetrics(m *metrics.Metrics) SearchOption {
	return func(s *SearchService) { s.metrics = m }
}

// WithRecorder sends a report for every search to r.
func WithRecorder(r diagnostics.Recorder) SearchOption {
	return func(s *SearchService) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) SearchOption {
	return func(s *SearchService) { s.logger = l }
}

// NewSearchService creates a search service
func NewSearchService(agg *engine.Aggregator, opts ...SearchOption) *SearchService {
	s := &SearchService{
		aggregator: agg,
		recorder:   diagnostics.Nop{},
		logger:     logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.Component("search")
	return s
}

// Search runs one search. source tags the diagnostics report (http, cli,
// canary).
func (s *SearchService) Search(ctx context.Context, keyword, source string) (*schema.SearchResult, error) {
	started := time.Now()

	res, err := s.aggregator.Search(ctx, keyword)
	if err != nil {
		if errors.Is(err, engine.ErrKeywordRequired) {
			s.metrics.ObserveSearch(metrics.ResultInvalid)
		} else {
			s.metrics.ObserveSearch(metrics.ResultError)
		}
		return nil, err
	}

	s.metrics.ObserveOutcomes(res.Outcomes)
	s.metrics.ObserveSearch(metrics.ResultOK)

	report := diagnostics.NewReport(keyword, source, started, res)
	s.record(ctx, report)

	s.logger.InfoContext(ctx, "search completed",
		"keyword", keyword,
		"source", source,
		"platforms", len(res.Outcomes),
		"failed", len(res.Failed()),
		"total", len(res.Listings),
		"duration_ms", report.DurationMS,
	)
	return res, nil
}

// record writes the report on a context detached from the caller, so a
// client that hung up still leaves a report behind.
func (s *SearchService) record(ctx context.Context, report *diagnostics.Report) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, report); err != nil {
		s.logger.WarnContext(ctx, "failed to record search report",
			"report_id", report.ID,
			"error", err,
		)
	}
}

// Platforms returns every configured platform, active or not.
func (s *SearchService) Platforms() []platform.Platform {
	return s.aggregator.Platforms()
}

// ListTools lists the tools of the first platform whose adapter is backed
// by an MCP server. Inactive platforms count: listing tools is how an
// operator checks a server before switching it on.
func (s *SearchService) ListTools(ctx context.Context) (string, []mcp.ToolInfo, error) {
	for _, p := range s.aggregator.Platforms() {
		lister, ok := p.Adapter.(ToolLister)
		if !ok {
			continue
		}
		tools, err := lister.ListTools(ctx)
		if err != nil {
			return p.Name, nil, err
		}
		return p.Name, tools, nil
	}
	return "", nil, ErrNoToolSource
}
