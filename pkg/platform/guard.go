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

// ErrTimeout reports that a platform exceeded its budget.
var ErrTimeout = errors.New("platform search timed out")

type attempt struct {
	listings []schema.JobListing
	err      error
}

// Guard runs p's adapter under the platform budget and never fails: any
// error, panic or timeout becomes an empty result plus a non-ok outcome.
// An adapter that ignores cancellation is abandoned when the budget runs
// out; its eventual result is dropped.
func Guard(ctx context.Context, p Platform, keyword string) ([]schema.JobListing, schema.PlatformOutcome) {
	start := time.Now()
	outcome := schema.PlatformOutcome{Platform: p.Name}

	parent := ctx
	ctx, cancel := context.WithTimeout(parent, p.Budget())
	defer cancel()

	done := make(chan attempt, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attempt{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		if p.Adapter == nil {
			done <- attempt{err: errors.New("no adapter configured")}
			return
		}
		listings, err := p.Adapter.Search(ctx, keyword)
		done <- attempt{listings: listings, err: err}
	}()

	var res attempt
	select {
	case res = <-done:
	case <-ctx.Done():
		res = attempt{err: ctx.Err()}
	}
	elapsed := time.Since(start)
	outcome.DurationMS = elapsed.Milliseconds()

	if res.err != nil {
		outcome.Status = schema.OutcomeFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome.Status = schema.OutcomeTimeout
			limit := "budget " + p.Budget().String()
			if parent.Err() != nil {
				limit = "caller deadline"
			}
			res.err = fmt.Errorf("%w after %s (%s): %v", ErrTimeout, elapsed.Round(time.Millisecond), limit, res.err)
		}
		outcome.Error = res.err.Error()
		return []schema.JobListing{}, outcome
	}

	if res.listings == nil {
		res.listings = []schema.JobListing{}
	}
	outcome.Status = schema.OutcomeOK
	outcome.Count = len(res.listings)
	return res.listings, outcome
}
