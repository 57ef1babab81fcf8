// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxyllm implements the "proxy_llm" platform kind: fetch a job
// board's result page through an authenticated HTTP proxy and let a
// language model extract the listings from the markup.
package proxyllm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/leseb/jobsearch-gw/pkg/core/api"
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/extract"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// Kind is the registry name of this adapter.
const Kind = "proxy_llm"

const (
	DefaultURLTemplate = "https://www.indeed.com/jobs?q=%s"
	DefaultProxyPort   = "22225"
	DefaultModel       = "gpt-4-1106-preview"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ExtractionPrompt instructs the model to return a bare JSON array.
const ExtractionPrompt = `You are a job listing parser. Extract job listings from the provided HTML content.
Return a JSON array of objects with the following structure:
{
  title: string,
  company: string,
  location: string,
  salary: string (if available),
  description: string (brief summary),
  postedDate: string (standardized format),
  url: string (full job listing URL)
}`

var (
	// ErrMissingProxy is returned when the proxy host or credentials are not configured.
	ErrMissingProxy = errors.New("proxyllm: proxy host and credentials are required")
	// ErrNoCompletion is returned when no completion client is configured.
	ErrNoCompletion = errors.New("proxyllm: no completion client configured")
)

func init() {
	platform.Providers.Register(Kind, func(_ context.Context, deps platform.Deps, params map[string]string) (platform.Adapter, error) {
		cfg, err := ConfigFromParams(params)
		if err != nil {
			return nil, err
		}
		if cfg.Model == "" {
			cfg.Model = deps.Model
		}
		return New(cfg, deps.Completion, deps.Log().Component(Kind)), nil
	})
}

// Config configures an Adapter.
type Config struct {
	URLTemplate  string // one %s, replaced by the query-escaped keyword
	ProxyHost    string
	ProxyPort    string
	Username     string
	Password     string
	UserAgent    string
	Model        string
	ReduceMarkup bool
	MaxBodyBytes int
}

// ConfigFromParams reads a Config from platform params.
func ConfigFromParams(params map[string]string) (Config, error) {
	p := platform.Params(params)
	reduce, err := p.Bool("reduce_markup", false)
	if err != nil {
		return Config{}, err
	}
	maxBytes, err := p.Int("max_body_bytes", 0)
	if err != nil {
		return Config{}, err
	}
	return Config{
		URLTemplate:  p.String("url_template", DefaultURLTemplate),
		ProxyHost:    p.String("proxy_host", ""),
		ProxyPort:    p.String("proxy_port", DefaultProxyPort),
		Username:     p.String("proxy_username", ""),
		Password:     p.String("proxy_password", ""),
		UserAgent:    p.String("user_agent", DefaultUserAgent),
		Model:        p.String("model", ""),
		ReduceMarkup: reduce,
		MaxBodyBytes: maxBytes,
	}, nil
}

// ProxyURL returns the proxy address with credentials, or ErrMissingProxy.
func (c Config) ProxyURL() (*url.URL, error) {
	if c.ProxyHost == "" || c.Username == "" || c.Password == "" {
		return nil, ErrMissingProxy
	}
	port := c.ProxyPort
	if port == "" {
		port = DefaultProxyPort
	}
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.ProxyHost, port),
	}, nil
}

// Adapter fetches through a proxy and extracts with a completion client.
type Adapter struct {
	cfg        Config
	completion api.ChatCompletionClient
	httpClient *http.Client
	proxyErr   error
	logger     *logging.Logger
}

// New creates an Adapter. Configuration problems are deferred to Search so
// that an inactive or half-configured platform does not stop startup.
func New(cfg Config, completion api.ChatCompletionClient, logger *logging.Logger) *Adapter {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = logging.Discard()
	}

	a := &Adapter{cfg: cfg, completion: completion, logger: logger}
	proxyURL, err := cfg.ProxyURL()
	if err != nil {
		a.proxyErr = err
		return a
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	a.httpClient = &http.Client{Transport: transport}
	return a
}

// Search fetches the result page for keyword and extracts listings from it.
// A model answer that is empty or not JSON yields no listings, not an error.
func (a *Adapter) Search(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	if a.proxyErr != nil {
		return nil, a.proxyErr
	}
	if a.completion == nil {
		return nil, ErrNoCompletion
	}

	page, err := a.fetch(ctx, keyword)
	if err != nil {
		return nil, err
	}

	content := page
	if a.cfg.ReduceMarkup {
		content = extract.ReduceMarkup([]byte(page))
	}
	content = extract.Truncate(content, a.cfg.MaxBodyBytes)

	resp, err := a.completion.CreateChatCompletion(ctx, &api.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []api.Message{
			api.SystemMessage(ExtractionPrompt),
			api.UserMessage(content),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("proxyllm extraction: %w", err)
	}

	text := resp.Content()
	items := extract.JSONArray(text)
	if items == nil && text != "" {
		a.logger.Debug("completion returned no JSON array", "chars", len(text))
	}
	return platform.ListingsFromMaps(items, a.logger), nil
}

func (a *Adapter) fetch(ctx context.Context, keyword string) (string, error) {
	target := fmt.Sprintf(a.cfg.URLTemplate, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy fetch returned status %d: %s", resp.StatusCode, strings.TrimSpace(extract.Truncate(string(body), 200)))
	}
	a.logger.Debug("page fetched", "url", target, "bytes", len(body))
	return string(body), nil
}
