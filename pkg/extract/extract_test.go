// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"strings"
	"testing"
)

func TestReduceMarkup(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains []string
		excludes []string
	}{
		{
			name:     "skips script and style",
			content:  `<html><head><title>t</title><style>.a{}</style></head><body><p>Go   Developer</p><script>var x=1;</script></body></html>`,
			contains: []string{"Go Developer"},
			excludes: []string{"var x", ".a{}", "<p>"},
		},
		{
			name:     "keeps link targets",
			content:  `<div><a href="https://www.indeed.com/viewjob?jk=1">Backend Engineer</a><a href="#top">top</a></div>`,
			contains: []string{"Backend Engineer (https://www.indeed.com/viewjob?jk=1)"},
			excludes: []string{"(#top)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReduceMarkup([]byte(tt.content))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("result %q does not contain %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("result %q should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("Truncate disabled = %q", got)
	}
	if got := Truncate("hello", 3); got != "hel" {
		t.Errorf("Truncate(3) = %q", got)
	}
	// "é" is two bytes; cutting inside it backs off to the rune start
	if got := Truncate("aé", 2); got != "a" {
		t.Errorf("Truncate mid-rune = %q", got)
	}
}

func TestJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"bare array", `[{"title":"a"},{"title":"b"}]`, 2},
		{"fenced", "```json\n[{\"title\":\"a\"}]\n```", 1},
		{"jobs wrapper", `{"jobs":[{"title":"a"}]}`, 1},
		{"prose around array", `Here you go: [{"title":"a"}] hope it helps`, 1},
		{"empty", "", 0},
		{"not json", "I could not find any jobs.", 0},
		{"unknown wrapper key", `{"job_postings":[{"title":"a"},{"title":"b"}]}`, 2},
		{"wrapper with metadata", `{"count":1,"postings":[{"title":"a"}]}`, 1},
		{"two unknown arrays", `{"a":[{"title":"a"}],"b":[{"title":"b"}]}`, 0},
		{"single listing object", `{"title":"Senior Go engineer","url":"https://x/1"}`, 1},
		{"empty object", `{}`, 0},
		{"empty jobs wrapper", `{"jobs":[]}`, 0},
		{"empty array", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JSONArray(tt.text); len(got) != tt.want {
				t.Errorf("JSONArray(%q) returned %d items, want %d", tt.text, len(got), tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	m := map[string]any{"job_title": " Go Dev ", "count": float64(3), "empty": ""}
	if got := String(m, "title", "job_title"); got != "Go Dev" {
		t.Errorf("String fallback = %q", got)
	}
	if got := String(m, "count"); got != "3" {
		t.Errorf("String number = %q", got)
	}
	if got := String(m, "empty", "missing"); got != "" {
		t.Errorf("String missing = %q", got)
	}
}
