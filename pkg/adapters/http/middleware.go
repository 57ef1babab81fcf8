// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/observability/metrics"
	"github.com/leseb/jobsearch-gw/pkg/ratelimit"
)

// statusRecorder remembers the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// recoverPanics turns a panic in any handler into a 500.
func (h *Handler) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.logger.Error("Panic while serving request", "path", r.URL.Path, "panic", v)
				h.writeError(w, http.StatusInternalServerError, schema.ErrorResponse{Error: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && h.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", OutcomesHeader)
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) originAllowed(origin string) bool {
	return slices.Contains(h.opts.CORSOrigins, "*") || slices.Contains(h.opts.CORSOrigins, origin)
}

// limit applies the per-client rate limit to a search route.
func (h *Handler) limit(next http.Handler) http.Handler {
	if h.opts.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.opts.Limiter.Allow(r.Context(), ratelimit.ClientIP(r, h.opts.TrustForwarded)) {
			h.opts.Metrics.ObserveSearch(metrics.ResultLimited)
			h.writeError(w, http.StatusTooManyRequests, schema.ErrorResponse{Error: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
