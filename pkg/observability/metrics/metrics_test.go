// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
)

func TestObserveOutcomes(t *testing.T) {
	m := New(nil)
	m.ObserveOutcomes([]schema.PlatformOutcome{
		{Platform: "LinkedIn", Status: schema.OutcomeOK, Count: 7, DurationMS: 1500},
		{Platform: "Indeed", Status: schema.OutcomeTimeout},
		{Platform: "LinkedIn", Status: schema.OutcomeOK, Count: 3},
	})
	m.ObserveSearch(ResultOK)
	m.ObserveSearch(ResultInvalid)
	m.ObserveSearch(ResultInvalid)

	if got := testutil.ToFloat64(m.PlatformSearches.WithLabelValues("LinkedIn", "ok")); got != 2 {
		t.Errorf("LinkedIn ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PlatformSearches.WithLabelValues("Indeed", "timeout")); got != 1 {
		t.Errorf("Indeed timeout = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PlatformListings.WithLabelValues("LinkedIn")); got != 10 {
		t.Errorf("LinkedIn listings = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.Searches.WithLabelValues(ResultInvalid)); got != 2 {
		t.Errorf("invalid searches = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.PlatformDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch(ResultOK)
	m.ObserveOutcomes([]schema.PlatformOutcome{{Platform: "x"}})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveSearch(ResultError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `jobsearch_searches_total{result="error"} 1`) {
		t.Errorf("exposition missing counter:\n%s", body)
	}
}
