// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

func sampleResult() *schema.SearchResult {
	return &schema.SearchResult{
		Listings: []schema.JobListing{{Title: "a"}, {Title: "b"}},
		Outcomes: []schema.PlatformOutcome{
			{Platform: "LinkedIn", Status: schema.OutcomeOK, Count: 2, DurationMS: 1200},
			{Platform: "Indeed", Status: schema.OutcomeFailed, Error: "proxy refused"},
		},
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport("golang", SourceHTTP, time.Now().Add(-time.Second), sampleResult())
	if !strings.HasPrefix(r.ID, "srch_") || len(r.ID) != len("srch_")+32 {
		t.Errorf("ID = %q", r.ID)
	}
	if r.Total != 2 || len(r.Outcomes) != 2 {
		t.Errorf("report = %+v", r)
	}
	if r.DurationMS < 1000 {
		t.Errorf("DurationMS = %d", r.DurationMS)
	}

	empty := NewReport("x", SourceCLI, time.Now(), nil)
	if empty.Outcomes == nil || empty.Total != 0 {
		t.Errorf("nil result report = %+v", empty)
	}
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec, err := Providers.New(context.Background(), "log", logging.New(logging.Config{Format: "json", Output: &buf}), nil)
	if err != nil {
		t.Fatalf("Providers.New: %v", err)
	}
	if err := rec.Record(context.Background(), NewReport("golang", SourceCanary, time.Now(), sampleResult())); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q", buf.String())
	}
	if entry["msg"] != "search report" || entry["source"] != "canary" || entry["total"] != float64(2) {
		t.Errorf("entry = %v", entry)
	}
	indeed, ok := entry["Indeed"].(map[string]any)
	if !ok || indeed["status"] != "failed" {
		t.Errorf("Indeed group = %v", entry["Indeed"])
	}
}

func TestNopAndUnknown(t *testing.T) {
	rec, err := Providers.New(context.Background(), "none", nil, nil)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	if err := rec.Record(context.Background(), &Report{}); err != nil {
		t.Errorf("Nop.Record: %v", err)
	}
	if _, err := Providers.New(context.Background(), "kafka", nil, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}
