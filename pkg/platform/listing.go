// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/extract"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

// ListingFromMap maps a decoded JSON object to a listing. Canonical field
// names win; Bright Data dataset names are accepted as fallbacks.
func ListingFromMap(m map[string]any) schema.JobListing {
	return schema.JobListing{
		Title:       extract.String(m, "title", "job_title"),
		Company:     extract.String(m, "company", "company_name"),
		Location:    extract.String(m, "location", "job_location"),
		Salary:      extract.String(m, "salary", "job_base_pay_range"),
		Description: extract.String(m, "description", "job_summary"),
		PostedDate:  extract.String(m, "postedDate", "posted_date", "job_posted_date"),
		URL:         extract.String(m, "url", "link", "job_url"),
	}
}

// ListingsFromMaps maps every object, dropping ones with neither a title
// nor a URL. The dropped count is logged at DEBUG on logger, which may be
// nil.
func ListingsFromMaps(items []map[string]any, logger *logging.Logger) []schema.JobListing {
	out := make([]schema.JobListing, 0, len(items))
	for _, m := range items {
		l := ListingFromMap(m)
		if l.Title == "" && l.URL == "" {
			continue
		}
		out = append(out, l)
	}
	if dropped := len(items) - len(out); dropped > 0 && logger != nil {
		logger.Debug("Dropped records without title or url", "records", len(items), "dropped", dropped)
	}
	return out
}
