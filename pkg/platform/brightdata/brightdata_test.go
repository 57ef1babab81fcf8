// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package brightdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/platform"
)

type fakeAPI struct {
	t          *testing.T
	snapshotID string
	statuses   []string // progress answers, last one repeats
	polls      atomic.Int32
	records    string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t := f.t
	if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/datasets/v3/trigger":
		q := r.URL.Query()
		want := map[string]string{
			"dataset_id":      DefaultDatasetID,
			"include_errors":  "true",
			"type":            "discover_new",
			"discover_by":     "keyword",
			"limit_per_input": "10",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		var inputs []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
			t.Fatalf("decode trigger body: %v", err)
		}
		if len(inputs) != 1 || inputs[0]["keyword"] != "golang" || inputs[0]["country"] != "US" {
			t.Errorf("trigger inputs = %+v", inputs)
		}
		if _, ok := inputs[0]["experience_level"]; !ok {
			t.Error("empty facets must still be sent")
		}
		json.NewEncoder(w).Encode(map[string]string{"snapshot_id": f.snapshotID})

	case r.Method == http.MethodGet && r.URL.Path == "/datasets/v3/progress/"+f.snapshotID:
		n := int(f.polls.Add(1)) - 1
		if n >= len(f.statuses) {
			n = len(f.statuses) - 1
		}
		json.NewEncoder(w).Encode(map[string]string{"status": f.statuses[n]})

	case r.Method == http.MethodGet && r.URL.Path == "/datasets/v3/snapshot/"+f.snapshotID:
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q", r.URL.Query().Get("format"))
		}
		w.Write([]byte(f.records))

	default:
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func newAdapter(t *testing.T, srv *httptest.Server) *Adapter {
	t.Helper()
	a, err := New(Config{
		BaseURL:      srv.URL,
		Token:        "secret",
		PollInterval: 5 * time.Millisecond,
		Facets:       Facets{Country: "US"},
	}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestSearch_PollsUntilReady(t *testing.T) {
	api := &fakeAPI{
		snapshotID: "s_abc",
		statuses:   []string{"running", "building", "ready"},
		records: `[
			{"job_title":"Go Engineer","company_name":"Acme","job_location":"Berlin","job_summary":"APIs","job_base_pay_range":"€80k","job_posted_date":"2025-01-02","url":"https://linkedin.com/jobs/1"},
			{"error":"dead page","error_code":"dead_page","url":"https://linkedin.com/jobs/2"},
			{"job_title":"SRE","company_name":"Initech","url":"https://linkedin.com/jobs/3"}
		]`,
	}
	api.t = t
	srv := httptest.NewServer(api)
	defer srv.Close()

	listings, err := newAdapter(t, srv).Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if api.polls.Load() != 3 {
		t.Errorf("expected 3 progress polls, got %d", api.polls.Load())
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (error row skipped), got %d", len(listings))
	}
	got := listings[0]
	if got.Title != "Go Engineer" || got.Company != "Acme" || got.Location != "Berlin" ||
		got.Description != "APIs" || got.Salary != "€80k" || got.PostedDate != "2025-01-02" ||
		got.URL != "https://linkedin.com/jobs/1" {
		t.Errorf("mapped listing = %+v", got)
	}
}

func TestSearch_SnapshotFailed(t *testing.T) {
	api := &fakeAPI{snapshotID: "s_bad", statuses: []string{"running", "failed"}}
	api.t = t
	srv := httptest.NewServer(api)
	defer srv.Close()

	_, err := newAdapter(t, srv).Search(context.Background(), "golang")
	if !errors.Is(err, ErrSnapshotFailed) {
		t.Fatalf("expected ErrSnapshotFailed, got %v", err)
	}
}

func TestSubmit_NoSnapshotID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"queued"}`))
	}))
	defer srv.Close()

	_, err := newAdapter(t, srv).Submit(context.Background(), "golang")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSubmit_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newAdapter(t, srv).Submit(context.Background(), "golang"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestAwait_ContextBoundsWait(t *testing.T) {
	api := &fakeAPI{snapshotID: "s_slow", statuses: []string{"running"}}
	api.t = t
	srv := httptest.NewServer(api)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	job := &Job{SnapshotID: "s_slow", State: StateSubmitted}
	err := newAdapter(t, srv).Await(ctx, job)
	if err == nil {
		t.Fatal("expected context error")
	}
	if job.State != StateSubmitted {
		t.Errorf("state = %s, want submitted", job.State)
	}
}

func TestFetch_RequiresReady(t *testing.T) {
	a := &Adapter{cfg: Config{}}
	if _, err := a.Fetch(context.Background(), &Job{SnapshotID: "x", State: StateSubmitted}); err == nil {
		t.Fatal("expected error fetching a job that is not ready")
	}
}

func TestJobAdvance(t *testing.T) {
	j := &Job{SnapshotID: "s", State: StateSubmitted}
	if err := j.advance("running"); err != nil || j.State != StateSubmitted {
		t.Fatalf("running: %v, %s", err, j.State)
	}
	if err := j.advance("ready"); err != nil || j.State != StateReady {
		t.Fatalf("ready: %v, %s", err, j.State)
	}
	if err := j.advance("failed"); err == nil {
		t.Error("ready job must not advance")
	}
	if err := (&Job{State: StateSubmitted}).advance("weird"); err == nil {
		t.Error("unknown status should error")
	}
}

func TestFactory(t *testing.T) {
	if _, err := platform.Providers.New(context.Background(), Kind, platform.Deps{}, nil); err == nil {
		t.Error("expected error without api_token")
	}
	if _, err := platform.Providers.New(context.Background(), Kind, platform.Deps{}, map[string]string{
		"api_token": "t", "poll_interval": "soon",
	}); err == nil {
		t.Error("expected error for malformed poll_interval")
	}

	cfg, err := ConfigFromParams(map[string]string{"api_token": "t", "limit_per_input": "5", "remote": "Remote"})
	if err != nil {
		t.Fatalf("ConfigFromParams: %v", err)
	}
	if cfg.LimitPerInput != 5 || cfg.Facets.Remote != "Remote" || cfg.DatasetID != DefaultDatasetID || cfg.PollInterval != DefaultPollInterval {
		t.Errorf("cfg = %+v", cfg)
	}
}
