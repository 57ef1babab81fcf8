// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform defines the job source abstraction: an Adapter that turns
// a keyword into listings, the Platform record that names and gates it, and
// the Guard that contains whatever an adapter does wrong.
//
// Adapter kinds live in sub-packages and self-register with Providers from
// init(). Blank-import the kinds a binary should support:
//
//	import (
//		_ "github.com/leseb/jobsearch-gw/pkg/platform/brightdata"
//		_ "github.com/leseb/jobsearch-gw/pkg/platform/proxyllm"
//	)
package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/core/api"
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/mcp"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/provider"
)

// DefaultTimeout bounds one platform search end to end.
const DefaultTimeout = 240 * time.Second

// Adapter searches one external job source. Implementations return errors
// freely; the Guard converts them into empty results.
type Adapter interface {
	Search(ctx context.Context, keyword string) ([]schema.JobListing, error)
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, keyword string) ([]schema.JobListing, error)

// Search calls f.
func (f AdapterFunc) Search(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	return f(ctx, keyword)
}

// Platform is a named, gated job source. The set of platforms is built once
// at startup and never changes afterwards.
type Platform struct {
	Name    string
	Kind    string
	Active  bool
	Timeout time.Duration
	Adapter Adapter
}

// Budget returns the platform's timeout, or DefaultTimeout when unset.
func (p Platform) Budget() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

// Deps are the shared runtime dependencies handed to adapter factories.
// Any field may be nil; factories fall back to defaults or fail at search
// time when a required dependency is missing.
type Deps struct {
	HTTPClient *http.Client
	Completion api.ChatCompletionClient
	Model      string
	Logger     *logging.Logger
	// DialMCP opens MCP sessions; nil means mcp.Dial.
	DialMCP func(ctx context.Context, cfg mcp.ServerConfig) (mcp.Session, error)
}

// HTTP returns the configured client or a fresh default one.
func (d Deps) HTTP() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{}
}

// Log returns the configured logger or a discarding one.
func (d Deps) Log() *logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Discard()
}

// Providers is the registry of adapter kinds.
var Providers = provider.NewRegistry[Adapter, Deps]("platform")
