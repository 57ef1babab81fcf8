// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestPlatforms(t *testing.T) {
	path := writeConfig(t, `
platforms:
  - name: LinkedIn MCP
    kind: mcp_tool
    active: true
    timeout: 90s
  - name: Indeed
    kind: proxy_llm
`)
	out, err := execute(t, "platforms", "--config", path, "--env-file", "absent.env")
	if err != nil {
		t.Fatalf("platforms: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", out)
	}
	if !strings.Contains(lines[1], "LinkedIn MCP") || !strings.Contains(lines[1], "true") || !strings.Contains(lines[1], "1m30s") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "proxy_llm") || !strings.Contains(lines[2], "4m0s") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web":{"results":[{"title":"Rust Engineer","url":"https://jobs.acme.test/1","description":"Berlin"}]}}`))
	}))
	defer srv.Close()

	path := writeConfig(t, `
platforms:
  - name: Web
    kind: websearch
    active: true
    params:
      provider: brave
      api_key: test
      base_url: `+srv.URL+`
diagnostics:
  type: none
`)
	out, err := execute(t, "search", "rust", "engineer", "--config", path, "--env-file", "absent.env", "--outcomes=false")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var listings []schema.JobListing
	if err := json.Unmarshal([]byte(out), &listings); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(listings) != 1 || listings[0].Platform != "Web" || !strings.HasPrefix(listings[0].ID, "Web-") {
		t.Errorf("listings = %+v", listings)
	}

	out, err = execute(t, "search", "rust", "--config", path, "--env-file", "absent.env", "--outcomes")
	if err != nil {
		t.Fatalf("search --outcomes: %v", err)
	}
	var withOutcomes struct {
		Listings []schema.JobListing      `json:"listings"`
		Outcomes []schema.PlatformOutcome `json:"outcomes"`
	}
	if err := json.Unmarshal([]byte(out), &withOutcomes); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(withOutcomes.Outcomes) != 1 || withOutcomes.Outcomes[0].Status != schema.OutcomeOK {
		t.Errorf("outcomes = %+v", withOutcomes.Outcomes)
	}
}

func TestSearch_RequiresKeyword(t *testing.T) {
	if _, err := execute(t, "search", "--env-file", "absent.env"); err == nil {
		t.Error("expected an error without a keyword")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "jobsearch "+Version) {
		t.Errorf("output = %q", out)
	}
}
