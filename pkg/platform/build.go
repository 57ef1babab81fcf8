// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
)

// ErrMisconfigured marks a platform whose adapter could not be built.
var ErrMisconfigured = errors.New("platform misconfigured")

// Spec is the static description of one platform, as read from
// configuration.
type Spec struct {
	Name    string
	Kind    string
	Active  bool
	Timeout time.Duration
	Params  map[string]string
}

// Build instantiates every spec through Providers, preserving order.
// Inactive platforms are built too so that operators can list them; they
// are filtered out at search time.
//
// An unknown kind is an error. A factory failure (a missing token, say) is
// not: the platform gets an adapter that fails every search with
// ErrMisconfigured, so the failure is contained like any other.
func Build(ctx context.Context, specs []Spec, deps Deps) ([]Platform, error) {
	platforms := make([]Platform, 0, len(specs))
	for _, s := range specs {
		if !Providers.Has(s.Kind) {
			return nil, fmt.Errorf("platform %q: unknown kind %q (available: %v)", s.Name, s.Kind, Providers.Available())
		}
		adapter, err := Providers.New(ctx, s.Kind, deps, s.Params)
		if err != nil {
			deps.Log().Warn("platform misconfigured", "platform", s.Name, "kind", s.Kind, "error", err)
			adapter = misconfigured(fmt.Errorf("%w: %s: %v", ErrMisconfigured, s.Name, err))
		}
		platforms = append(platforms, Platform{
			Name:    s.Name,
			Kind:    s.Kind,
			Active:  s.Active,
			Timeout: s.Timeout,
			Adapter: adapter,
		})
	}
	return platforms, nil
}

func misconfigured(err error) Adapter {
	return AdapterFunc(func(context.Context, string) ([]schema.JobListing, error) {
		return nil, err
	})
}
