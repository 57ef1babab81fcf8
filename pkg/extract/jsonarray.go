// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSONArray recovers a JSON array of objects from completion or tool text.
//
// Accepted shapes, in order: a bare array, the same wrapped in a Markdown
// code fence, an object, and finally the first '[' ... last ']' span of the
// text. An object yields the array under "jobs", "listings", "results" or
// "data"; failing those, its only array-valued member whatever the key; and
// when it holds no array at all, the object itself as a single item. An
// object with several unknown arrays is ambiguous and yields nil.
// It returns nil when nothing parses; callers treat that as "no listings".
func JSONArray(text string) []map[string]any {
	text = strings.TrimSpace(stripFence(text))
	if text == "" {
		return nil
	}

	var arr []map[string]any
	if err := json.Unmarshal([]byte(text), &arr); err == nil {
		return arr
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return fromObject(obj)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &arr); err == nil {
			return arr
		}
	}
	return nil
}

var wrapperKeys = []string{"jobs", "listings", "results", "data"}

func fromObject(obj map[string]json.RawMessage) []map[string]any {
	for _, key := range wrapperKeys {
		if raw, ok := obj[key]; ok {
			var arr []map[string]any
			if err := json.Unmarshal(raw, &arr); err == nil {
				return arr
			}
		}
	}

	var found []map[string]any
	arrays := 0
	for _, raw := range obj {
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			continue
		}
		var arr []map[string]any
		if err := json.Unmarshal(raw, &arr); err == nil {
			arrays++
			found = arr
		}
	}
	switch {
	case arrays == 1:
		return found
	case arrays > 1 || len(obj) == 0:
		return nil
	}

	single := make(map[string]any, len(obj))
	for k, raw := range obj {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		single[k] = v
	}
	return []map[string]any{single}
}

func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	t = strings.TrimPrefix(t, "```")
	// drop the info string ("json")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

// String reads a text field from a decoded JSON object, trying each key in
// turn. Numbers are formatted; anything else is ignored.
func String(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			b, _ := json.Marshal(v)
			return string(b)
		}
	}
	return ""
}
