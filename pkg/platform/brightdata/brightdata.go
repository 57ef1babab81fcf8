// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package brightdata implements the "brightdata_dataset" platform kind: a
// keyword discovery run against a Bright Data Datasets v3 collector.
//
// A search is a three-step job. Submit triggers the collection and yields a
// snapshot id, Await polls progress until the snapshot is ready or failed,
// and Fetch downloads and maps the records.
package brightdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// Kind is the registry name of this adapter.
const Kind = "brightdata_dataset"

const (
	DefaultBaseURL       = "https://api.brightdata.com"
	DefaultDatasetID     = "gd_lpfll7v5hcqtkxl6l" // LinkedIn job listings
	DefaultLimitPerInput = 10
	DefaultPollInterval  = 10 * time.Second
)

var (
	// ErrNoSnapshot is returned when the trigger response carries no snapshot id.
	ErrNoSnapshot = errors.New("brightdata: no snapshot id in trigger response")
	// ErrSnapshotFailed is returned when the collector reports the run as failed.
	ErrSnapshotFailed = errors.New("brightdata: snapshot failed")
)

func init() {
	platform.Providers.Register(Kind, func(_ context.Context, deps platform.Deps, params map[string]string) (platform.Adapter, error) {
		cfg, err := ConfigFromParams(params)
		if err != nil {
			return nil, err
		}
		return New(cfg, deps.HTTP(), deps.Log().Component(Kind))
	})
}

// Facets are the discovery filters sent with every keyword. Empty values
// are sent as empty strings.
type Facets struct {
	Location        string `json:"location"`
	Country         string `json:"country"`
	TimeRange       string `json:"time_range"`
	JobType         string `json:"job_type"`
	ExperienceLevel string `json:"experience_level"`
	Remote          string `json:"remote"`
	Company         string `json:"company"`
}

// Config configures an Adapter.
type Config struct {
	BaseURL       string
	Token         string
	DatasetID     string
	LimitPerInput int
	PollInterval  time.Duration
	Facets        Facets
}

// ConfigFromParams reads a Config from platform params.
func ConfigFromParams(params map[string]string) (Config, error) {
	p := platform.Params(params)
	limit, err := p.Int("limit_per_input", DefaultLimitPerInput)
	if err != nil {
		return Config{}, err
	}
	interval, err := p.Duration("poll_interval", DefaultPollInterval)
	if err != nil {
		return Config{}, err
	}
	return Config{
		BaseURL:       p.String("base_url", DefaultBaseURL),
		Token:         p.String("api_token", ""),
		DatasetID:     p.String("dataset_id", DefaultDatasetID),
		LimitPerInput: limit,
		PollInterval:  interval,
		Facets: Facets{
			Location:        p["location"],
			Country:         p["country"],
			TimeRange:       p["time_range"],
			JobType:         p["job_type"],
			ExperienceLevel: p["experience_level"],
			Remote:          p["remote"],
			Company:         p["company"],
		},
	}, nil
}

// Adapter searches a Bright Data dataset.
type Adapter struct {
	cfg    Config
	client *resty.Client
	logger *logging.Logger
}

// New creates an Adapter. The token is required.
func New(cfg Config, hc *http.Client, logger *logging.Logger) (*Adapter, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%s: api_token parameter is required", Kind)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DatasetID == "" {
		cfg.DatasetID = DefaultDatasetID
	}
	if cfg.LimitPerInput <= 0 {
		cfg.LimitPerInput = DefaultLimitPerInput
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.Discard()
	}

	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")

	return &Adapter{cfg: cfg, client: client, logger: logger}, nil
}

// Search runs Submit, Await and Fetch in sequence.
func (a *Adapter) Search(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	job, err := a.Submit(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if err := a.Await(ctx, job); err != nil {
		return nil, err
	}
	return a.Fetch(ctx, job)
}

type input struct {
	Keyword string `json:"keyword"`
	Facets
}

type triggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// Submit triggers a discovery run for keyword.
func (a *Adapter) Submit(ctx context.Context, keyword string) (*Job, error) {
	var out triggerResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dataset_id":      a.cfg.DatasetID,
			"include_errors":  "true",
			"type":            "discover_new",
			"discover_by":     "keyword",
			"limit_per_input": strconv.Itoa(a.cfg.LimitPerInput),
		}).
		SetBody([]input{{Keyword: keyword, Facets: a.cfg.Facets}}).
		SetResult(&out).
		Post("/datasets/v3/trigger")
	if err != nil {
		return nil, fmt.Errorf("brightdata trigger: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("brightdata trigger returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.SnapshotID == "" {
		return nil, ErrNoSnapshot
	}

	a.logger.Debug("snapshot triggered", "snapshot_id", out.SnapshotID, "keyword", keyword)
	return &Job{SnapshotID: out.SnapshotID, State: StateSubmitted}, nil
}

type progressResponse struct {
	Status string `json:"status"`
}

// Await polls progress until the job is ready or failed. The context bounds
// the wait.
func (a *Adapter) Await(ctx context.Context, job *Job) error {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := a.progress(ctx, job.SnapshotID)
		if err != nil {
			return err
		}
		if err := job.advance(status); err != nil {
			return err
		}
		if job.State != StateSubmitted {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("brightdata await %s: %w", job.SnapshotID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *Adapter) progress(ctx context.Context, snapshotID string) (string, error) {
	var out progressResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/datasets/v3/progress/" + snapshotID)
	if err != nil {
		return "", fmt.Errorf("brightdata progress: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("brightdata progress returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.Status, nil
}

// Fetch downloads a ready snapshot and maps its records. Error rows are
// skipped.
func (a *Adapter) Fetch(ctx context.Context, job *Job) ([]schema.JobListing, error) {
	if job.State != StateReady {
		return nil, fmt.Errorf("brightdata fetch %s: job is %s", job.SnapshotID, job.State)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		Get("/datasets/v3/snapshot/" + job.SnapshotID)
	if err != nil {
		return nil, fmt.Errorf("brightdata snapshot: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("brightdata snapshot returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if resp.StatusCode() == http.StatusAccepted {
		return nil, fmt.Errorf("brightdata snapshot %s not ready", job.SnapshotID)
	}

	var records []map[string]any
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("brightdata snapshot: parse records: %w", err)
	}

	kept := records[:0]
	for _, r := range records {
		if _, bad := r["error"]; bad {
			continue
		}
		if _, bad := r["error_code"]; bad {
			continue
		}
		kept = append(kept, r)
	}
	a.logger.Debug("snapshot fetched", "snapshot_id", job.SnapshotID, "records", len(records), "kept", len(kept))
	return platform.ListingsFromMaps(kept, a.logger), nil
}
