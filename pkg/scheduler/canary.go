// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler runs the canary search on a cron schedule. The canary
// exercises every active platform with a fixed keyword so that metrics and
// diagnostics show a broken platform before a user hits it.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, keyword, source string) (*schema.SearchResult, error)
}

// Canary wraps robfig/cron and the canary job.
type Canary struct {
	cron    *cron.Cron
	search  Searcher
	spec    string // cron spec, e.g. "@every 30m"
	keyword string
	logger  *logging.Logger
}

// NewCanary creates a canary that searches keyword on spec.
func NewCanary(search Searcher, spec, keyword string, logger *logging.Logger) *Canary {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.Component("canary")
	cl := cronLogger{logger}
	return &Canary{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		search:  search,
		spec:    spec,
		keyword: keyword,
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler. Runs use ctx, so
// cancelling it aborts an in-flight canary.
func (c *Canary) Start(ctx context.Context) error {
	if _, err := c.cron.AddFunc(c.spec, func() { c.Run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", c.spec, err)
	}
	c.cron.Start()
	c.logger.Info("Canary scheduled", "spec", c.spec, "keyword", c.keyword)
	return nil
}

// Stop stops the scheduler. The returned context is done once a running
// canary has finished.
func (c *Canary) Stop() context.Context {
	return c.cron.Stop()
}

// Run performs one canary search.
func (c *Canary) Run(ctx context.Context) {
	res, err := c.search.Search(ctx, c.keyword, diagnostics.SourceCanary)
	if err != nil {
		c.logger.Error("Canary search failed", "error", err)
		return
	}
	if failed := res.Failed(); len(failed) > 0 {
		for _, o := range failed {
			c.logger.Warn("Canary platform unhealthy",
				"platform", o.Platform,
				"status", o.Status,
				"error", o.Error)
		}
		return
	}
	c.logger.Debug("Canary healthy", "total", len(res.Listings))
}

// cronLogger adapts the gateway logger to cron.Logger.
type cronLogger struct {
	l *logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
