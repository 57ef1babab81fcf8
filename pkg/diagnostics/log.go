// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package diagnostics

import (
	"context"
	"log/slog"

	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

// LogRecorder writes each report as one structured log line.
type LogRecorder struct {
	logger *logging.Logger
}

// NewLogRecorder creates a LogRecorder. A nil logger discards.
func NewLogRecorder(logger *logging.Logger) *LogRecorder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LogRecorder{logger: logger.Component("diagnostics")}
}

// Record logs r at info level with one group per platform.
func (l *LogRecorder) Record(ctx context.Context, r *Report) error {
	attrs := []any{
		"report_id", r.ID,
		"keyword", r.Keyword,
		"source", r.Source,
		"total", r.Total,
		"duration_ms", r.DurationMS,
	}
	for _, o := range r.Outcomes {
		attrs = append(attrs, slog.Group(o.Platform,
			"status", string(o.Status),
			"count", o.Count,
			"duration_ms", o.DurationMS,
		))
	}
	l.logger.InfoContext(ctx, "search report", attrs...)
	return nil
}

// Close is a no-op.
func (l *LogRecorder) Close() error { return nil }
