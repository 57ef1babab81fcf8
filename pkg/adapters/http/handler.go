// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package http is the HTTP transport of the gateway.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/core/services"
	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
	"github.com/leseb/jobsearch-gw/pkg/mcp"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/observability/metrics"
	"github.com/leseb/jobsearch-gw/pkg/ratelimit"
)

// OutcomesHeader carries the per-platform outcome of a search.
const OutcomesHeader = "X-Search-Outcomes"

// maxBodyBytes bounds POST /api/search bodies.
const maxBodyBytes = 1 << 20

// Options configures the optional parts of the handler.
type Options struct {
	// CORSOrigins lists the allowed browser origins. "*" allows any.
	CORSOrigins []string
	// Limiter limits the search routes per client IP. Nil disables it.
	Limiter ratelimit.Limiter
	// TrustForwarded keys the limiter on X-Forwarded-For instead of the
	// remote address.
	TrustForwarded bool
	// Metrics is served on /metrics when set.
	Metrics *metrics.Metrics
}

// Handler implements the HTTP adapter
type Handler struct {
	search   *services.SearchService
	logger   *logging.Logger
	mux      *http.ServeMux
	validate *validator.Validate
	opts     Options
	chain    http.Handler
}

// New creates a new HTTP handler
func New(search *services.SearchService, logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Handler{
		search:   search,
		logger:   logger.Component("http"),
		mux:      http.NewServeMux(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
	}

	// Health
	h.mux.HandleFunc("GET /healthcheck", h.handleHealth)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /openapi.json", h.handleOpenAPI)
	if opts.Metrics != nil {
		h.mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	// Search
	h.mux.Handle("GET /search", h.limit(http.HandlerFunc(h.handleSearchQuery)))
	h.mux.Handle("GET /api/jobs/search", h.limit(http.HandlerFunc(h.handleSearchQuery)))
	h.mux.Handle("POST /api/search", h.limit(http.HandlerFunc(h.handleSearchBody)))

	// MCP
	h.mux.HandleFunc("GET /api/jobs/list-tools", h.handleListTools)

	h.chain = h.recoverPanics(h.logRequests(h.cors(h.mux)))
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.chain.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, schema.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSearchQuery serves GET /search and GET /api/jobs/search.
func (h *Handler) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	h.runSearch(w, r, schema.SearchRequest{Keyword: r.URL.Query().Get("keyword")})
}

// handleSearchBody serves POST /api/search.
func (h *Handler) handleSearchBody(w http.ResponseWriter, r *http.Request) {
	var req schema.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Debug("Failed to parse request", "error", err)
		h.opts.Metrics.ObserveSearch(metrics.ResultInvalid)
		h.writeError(w, http.StatusBadRequest, schema.ErrorResponse{Error: "Invalid request body"})
		return
	}
	h.runSearch(w, r, req)
}

func (h *Handler) runSearch(w http.ResponseWriter, r *http.Request, req schema.SearchRequest) {
	req.Keyword = strings.TrimSpace(req.Keyword)
	if err := h.validate.Struct(req); err != nil {
		h.opts.Metrics.ObserveSearch(metrics.ResultInvalid)
		h.writeError(w, http.StatusBadRequest, schema.ErrorResponse{Error: "Keyword is required"})
		return
	}

	res, err := h.search.Search(r.Context(), req.Keyword, diagnostics.SourceHTTP)
	if err != nil {
		h.logger.Error("Failed to search jobs", "keyword", req.Keyword, "error", err)
		h.writeError(w, http.StatusInternalServerError, schema.ErrorResponse{
			Error:   "Failed to search jobs",
			Message: err.Error(),
		})
		return
	}

	w.Header().Set(OutcomesHeader, FormatOutcomes(res.Outcomes))
	h.writeJSON(w, http.StatusOK, res.Listings)
}

// toolList is the body of GET /api/jobs/list-tools.
type toolList struct {
	Platform string         `json:"platform"`
	Tools    []mcp.ToolInfo `json:"tools"`
}

func (h *Handler) handleListTools(w http.ResponseWriter, r *http.Request) {
	name, tools, err := h.search.ListTools(r.Context())
	switch {
	case errors.Is(err, services.ErrNoToolSource):
		h.writeError(w, http.StatusNotFound, schema.ErrorResponse{Error: "No MCP platform configured"})
		return
	case err != nil:
		h.logger.Error("Failed to list tools", "platform", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, schema.ErrorResponse{
			Error:   "Failed to list tools",
			Details: err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, toolList{Platform: name, Tools: tools})
}

// FormatOutcomes renders outcomes as "name=status:count" pairs joined by
// commas, in platform order.
func FormatOutcomes(outcomes []schema.PlatformOutcome) string {
	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		parts = append(parts, fmt.Sprintf("%s=%s:%d", o.Platform, o.Status, o.Count))
	}
	return strings.Join(parts, ",")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, body schema.ErrorResponse) {
	h.writeJSON(w, status, body)
}
