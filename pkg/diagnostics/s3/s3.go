// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package s3 archives search reports as JSON objects in S3 (or MinIO).
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

func init() {
	diagnostics.Providers.Register("s3", func(ctx context.Context, _ *logging.Logger, params map[string]string) (diagnostics.Recorder, error) {
		return New(ctx, Options{
			Bucket:   params["bucket"],
			Region:   params["region"],
			Prefix:   params["prefix"],
			Endpoint: params["endpoint"],
		})
	})
}

var _ diagnostics.Recorder = (*Store)(nil)

// Options configures the S3 backend.
type Options struct {
	Bucket   string // required
	Region   string // e.g. "us-east-1"
	Prefix   string // key prefix, e.g. "reports/"
	Endpoint string // custom endpoint for MinIO compatibility
}

// Store writes one object per report:
//
//	<prefix><yyyy>/<mm>/<dd>/<report_id>.json
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed Store from the default AWS configuration chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 diagnostics: bucket is required")
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg, endpointOption(opts.Endpoint)...), opts.Bucket, opts.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func endpointOption(endpoint string) []func(*s3.Options) {
	if endpoint == "" {
		return nil
	}
	return []func(*s3.Options){func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // required for MinIO
	}}
}

// Key returns the object key for r.
func (s *Store) Key(r *diagnostics.Report) string {
	return s.prefix + r.StartedAt.UTC().Format("2006/01/02") + "/" + r.ID + ".json"
}

// Record uploads r as JSON.
func (s *Store) Record(ctx context.Context, r *diagnostics.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(r)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put report: %w", err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error { return nil }
