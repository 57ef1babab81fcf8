// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Params wraps an adapter's string settings with typed accessors. Malformed
// values are reported, never silently replaced.
type Params map[string]string

// String returns the trimmed value of key, or def when empty.
func (p Params) String(key, def string) string {
	if v := strings.TrimSpace(p[key]); v != "" {
		return v
	}
	return def
}

// Int parses key as an integer.
func (p Params) Int(key string, def int) (int, error) {
	v := strings.TrimSpace(p[key])
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

// Bool parses key as a boolean.
func (p Params) Bool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(p[key])
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("param %s: %w", key, err)
	}
	return b, nil
}

// Duration parses key as a Go duration ("10s", "2m").
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(p[key])
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return d, nil
}

// List splits a comma-separated value, dropping empty items.
func (p Params) List(key string) []string {
	var out []string
	for _, s := range strings.Split(p[key], ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
