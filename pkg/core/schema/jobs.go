// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "time"

// JobListing is the canonical unit of search output. Platform and ID are
// owned by the aggregator; adapters leave them empty.
type JobListing struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Salary      string `json:"salary,omitempty"`
	Description string `json:"description"`
	PostedDate  string `json:"postedDate"`
	URL         string `json:"url"`
	Platform    string `json:"platform"`
	ID          string `json:"id"`
}

// SearchRequest is the inbound search payload (POST body or query string)
type SearchRequest struct {
	Keyword string `json:"keyword" validate:"required"`
}

// OutcomeStatus describes how a single platform search settled
type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeTimeout OutcomeStatus = "timeout"
)

// PlatformOutcome reports what happened to one active platform during a
// search. It never changes the response body; it feeds headers, logs,
// metrics and diagnostics.
type PlatformOutcome struct {
	Platform   string        `json:"platform"`
	Status     OutcomeStatus `json:"status"`
	Count      int           `json:"count"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"durationMs"`
}

// Duration returns the outcome duration as a time.Duration
func (o PlatformOutcome) Duration() time.Duration {
	return time.Duration(o.DurationMS) * time.Millisecond
}

// SearchResult is the aggregator output: merged listings plus one outcome
// per active platform, both in registration order.
type SearchResult struct {
	Listings []JobListing      `json:"listings"`
	Outcomes []PlatformOutcome `json:"outcomes"`
}

// Failed returns the outcomes that did not settle as ok
func (r *SearchResult) Failed() []PlatformOutcome {
	var failed []PlatformOutcome
	for _, o := range r.Outcomes {
		if o.Status != OutcomeOK {
			failed = append(failed, o)
		}
	}
	return failed
}

// ErrorResponse is the JSON body returned on 4xx/5xx responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
