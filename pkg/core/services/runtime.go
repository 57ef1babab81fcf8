// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leseb/jobsearch-gw/pkg/core/api"
	"github.com/leseb/jobsearch-gw/pkg/core/config"
	"github.com/leseb/jobsearch-gw/pkg/core/engine"
	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
	_ "github.com/leseb/jobsearch-gw/pkg/diagnostics/s3"
	_ "github.com/leseb/jobsearch-gw/pkg/diagnostics/sqlstore"
	"github.com/leseb/jobsearch-gw/pkg/mcp"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/observability/metrics"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// Runtime holds what a binary needs to run searches from a configuration.
type Runtime struct {
	Search  *SearchService
	Metrics *metrics.Metrics

	closers []io.Closer
}

// NewRuntime builds the completion client, the platforms, the diagnostics
// recorder and the search service described by cfg.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *logging.Logger, reg *prometheus.Registry) (*Runtime, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	deps := platform.Deps{
		HTTPClient: &http.Client{},
		Model:      cfg.Completion.Model,
		Logger:     logger.Component("platform"),
		DialMCP:    mcp.Dial,
	}
	if cfg.Completion.APIKey != "" || cfg.Completion.Endpoint != "" {
		deps.Completion = api.NewOpenAIClient(cfg.Completion.Endpoint, cfg.Completion.APIKey, api.WithMaxRetries(0))
		logger.Info("Initialized completion client", "endpoint", cfg.Completion.Endpoint, "model", cfg.Completion.Model)
	}

	platforms, err := platform.Build(ctx, cfg.Specs(), deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build platforms: %w", err)
	}
	rt := &Runtime{Metrics: metrics.New(reg)}
	for _, p := range platforms {
		logger.Info("Initialized platform", "platform", p.Name, "kind", p.Kind, "active", p.Active, "timeout", p.Budget())
		if c, ok := p.Adapter.(io.Closer); ok {
			rt.closers = append(rt.closers, c)
		}
	}

	recorder, err := diagnostics.Providers.New(ctx, cfg.Diagnostics.Type, logger, cfg.Diagnostics.Params)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize diagnostics: %w", err)
	}
	rt.closers = append(rt.closers, recorder)
	logger.Info("Initialized diagnostics recorder", "type", cfg.Diagnostics.Type)

	agg := engine.New(platforms, engine.WithLogger(logger.Component("aggregator")))
	rt.Search = NewSearchService(agg,
		WithMetrics(rt.Metrics),
		WithRecorder(recorder),
		WithLogger(logger),
	)
	return rt, nil
}

// Close releases MCP sessions and the diagnostics recorder.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
