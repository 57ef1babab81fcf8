// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/leseb/jobsearch-gw/docs"
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
)

var (
	cachedJSON []byte
	jsonOnce   sync.Once
)

// handleOpenAPI serves the embedded OpenAPI description as JSON.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOnce.Do(func() {
		data, err := openAPIJSON(docs.OpenAPISpec)
		if err != nil {
			h.logger.Error("Failed to load OpenAPI spec", "error", err)
			return
		}
		cachedJSON = data
	})

	if cachedJSON == nil {
		h.writeError(w, http.StatusInternalServerError, schema.ErrorResponse{Error: "Failed to load OpenAPI spec"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(cachedJSON)
}

func openAPIJSON(doc []byte) ([]byte, error) {
	var spec any
	if err := yaml.Unmarshal(doc, &spec); err != nil {
		return nil, err
	}
	return json.Marshal(convertYAMLToJSON(spec))
}

// convertYAMLToJSON rewrites the map[any]any values yaml.v3 produces for
// non-string keys into map[string]any, which encoding/json accepts.
func convertYAMLToJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertYAMLToJSON(v)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[fmt.Sprint(k)] = convertYAMLToJSON(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertYAMLToJSON(v)
		}
		return result
	default:
		return v
	}
}
