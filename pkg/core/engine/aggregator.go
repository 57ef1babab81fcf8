// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine fans a keyword search out to every active platform and
// merges what comes back.
package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// ErrKeywordRequired is returned for an empty or blank keyword.
var ErrKeywordRequired = errors.New("keyword is required")

const idSuffixLen = 9

// Aggregator runs one search across a fixed set of platforms.
type Aggregator struct {
	platforms []platform.Platform
	logger    *logging.Logger
	newSuffix func() string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for per-platform failures.
func WithLogger(l *logging.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// New creates an Aggregator over a copy of platforms. Order is kept and is
// the order of merged results.
func New(platforms []platform.Platform, opts ...Option) *Aggregator {
	a := &Aggregator{
		platforms: append([]platform.Platform(nil), platforms...),
		logger:    logging.Discard(),
		newSuffix: randomSuffix,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Platforms returns a copy of the configured platforms, active or not.
func (a *Aggregator) Platforms() []platform.Platform {
	return append([]platform.Platform(nil), a.platforms...)
}

// Active returns the platforms a search will query.
func (a *Aggregator) Active() []platform.Platform {
	active := make([]platform.Platform, 0, len(a.platforms))
	for _, p := range a.platforms {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

// SearchJobs returns the merged listings of every active platform. Platform
// failures are not errors; they only shrink the result.
func (a *Aggregator) SearchJobs(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	res, err := a.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return res.Listings, nil
}

// Search queries every active platform concurrently, waits for all of them,
// and returns the listings in platform order together with one outcome per
// platform. Each listing is tagged with its platform name and a fresh id.
func (a *Aggregator) Search(ctx context.Context, keyword string) (*schema.SearchResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrKeywordRequired
	}

	active := a.Active()
	listings := make([][]schema.JobListing, len(active))
	outcomes := make([]schema.PlatformOutcome, len(active))

	var g errgroup.Group
	for i, p := range active {
		g.Go(func() error {
			listings[i], outcomes[i] = platform.Guard(ctx, p, keyword)
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]schema.JobListing, 0)
	for i, p := range active {
		if o := outcomes[i]; o.Status != schema.OutcomeOK {
			a.logger.Warn("platform search failed",
				"platform", p.Name,
				"status", o.Status,
				"error", o.Error,
				"duration_ms", o.DurationMS,
			)
			continue
		}
		for _, l := range listings[i] {
			l.Platform = p.Name
			l.ID = p.Name + "-" + a.newSuffix()
			merged = append(merged, l)
		}
	}

	return &schema.SearchResult{Listings: merged, Outcomes: outcomes}, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLen]
}
