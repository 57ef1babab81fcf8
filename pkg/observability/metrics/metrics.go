// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for searches and per-platform
// outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
)

const namespace = "jobsearch"

// Search results for SearchesTotal.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
	ResultLimited = "rate_limited"
)

// Metrics holds the gateway's collectors.
type Metrics struct {
	PlatformSearches *prometheus.CounterVec
	PlatformListings *prometheus.CounterVec
	PlatformDuration *prometheus.HistogramVec
	Searches         *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg gets a
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		PlatformSearches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "platform_searches_total",
				Help:      "Platform searches by outcome status",
			},
			[]string{"platform", "status"},
		),
		PlatformListings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "platform_listings_total",
				Help:      "Listings returned per platform",
			},
			[]string{"platform"},
		),
		PlatformDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "platform_search_duration_seconds",
				Help:      "Platform search duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 240},
			},
			[]string{"platform"},
		),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Inbound searches by result",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.PlatformSearches, m.PlatformListings, m.PlatformDuration, m.Searches)
	return m
}

// ObserveOutcomes records one search's per-platform outcomes.
func (m *Metrics) ObserveOutcomes(outcomes []schema.PlatformOutcome) {
	if m == nil {
		return
	}
	for _, o := range outcomes {
		m.PlatformSearches.WithLabelValues(o.Platform, string(o.Status)).Inc()
		m.PlatformListings.WithLabelValues(o.Platform).Add(float64(o.Count))
		m.PlatformDuration.WithLabelValues(o.Platform).Observe(o.Duration().Seconds())
	}
}

// ObserveSearch counts one inbound search with the given result.
func (m *Metrics) ObserveSearch(result string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
