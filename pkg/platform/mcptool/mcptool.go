// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcptool implements the "mcp_tool" platform kind: a job search
// performed by a scraping tool exposed over the Model Context Protocol,
// by default Bright Data's linkedin_jobs_posting.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leseb/jobsearch-gw/pkg/core/api"
	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/extract"
	"github.com/leseb/jobsearch-gw/pkg/mcp"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
	"github.com/leseb/jobsearch-gw/pkg/platform"
)

// Kind is the registry name of this adapter.
const Kind = "mcp_tool"

const (
	DefaultTool           = "linkedin_jobs_posting"
	DefaultArgument       = "keyword"
	DefaultPromptTemplate = "Find jobs for %s on LinkedIn"
	DefaultCommand        = "npx"
)

// ReshapePrompt asks the model to turn free-form tool output into listings.
// The reply is requested as a JSON object since reshape sets the json_object
// response format.
const ReshapePrompt = `You convert job search results into structured data.
Return only a JSON object of the form {"jobs": [...]} where each element has
the keys title, company, location, salary, description, postedDate and url.
Use empty strings for unknown values. Return {"jobs": []} when the input
contains no job postings.`

// ErrToolFailed is returned when the tool reports an error result.
var ErrToolFailed = errors.New("mcptool: tool returned an error")

func init() {
	platform.Providers.Register(Kind, func(_ context.Context, deps platform.Deps, params map[string]string) (platform.Adapter, error) {
		cfg, err := ConfigFromParams(params)
		if err != nil {
			return nil, err
		}
		if cfg.Model == "" {
			cfg.Model = deps.Model
		}
		var completion api.ChatCompletionClient
		if cfg.Reshape {
			completion = deps.Completion
		}
		return New(cfg, deps.DialMCP, completion, deps.Log().Component(Kind)), nil
	})
}

// Config configures an Adapter.
type Config struct {
	Server         mcp.ServerConfig
	Tool           string
	Argument       string
	PromptTemplate string // one %s, replaced by the keyword
	Reshape        bool
	Model          string
}

// ConfigFromParams reads a Config from platform params. Without a url the
// server is spawned over stdio (npx -y @brightdata/mcp) with API_TOKEN and
// WEB_UNLOCKER_ZONE taken from params.
func ConfigFromParams(params map[string]string) (Config, error) {
	p := platform.Params(params)
	reshape, err := p.Bool("reshape", false)
	if err != nil {
		return Config{}, err
	}

	server := mcp.ServerConfig{
		URL:   p.String("url", ""),
		Token: p.String("token", ""),
	}
	if server.URL == "" {
		server.Command = p.String("command", DefaultCommand)
		server.Args = p.List("args")
		if len(server.Args) == 0 {
			server.Args = []string{"-y", "@brightdata/mcp"}
		}
		server.Env = map[string]string{}
		if v := p.String("api_token", ""); v != "" {
			server.Env["API_TOKEN"] = v
		}
		if v := p.String("web_unlocker_zone", ""); v != "" {
			server.Env["WEB_UNLOCKER_ZONE"] = v
		}
	}

	return Config{
		Server:         server,
		Tool:           p.String("tool", DefaultTool),
		Argument:       p.String("argument", DefaultArgument),
		PromptTemplate: p.String("prompt_template", DefaultPromptTemplate),
		Reshape:        reshape,
		Model:          p.String("model", ""),
	}, nil
}

// Adapter calls an MCP tool. The session is opened on first use and
// reopened after a failed call.
type Adapter struct {
	cfg        Config
	dial       func(ctx context.Context, cfg mcp.ServerConfig) (mcp.Session, error)
	completion api.ChatCompletionClient
	logger     *logging.Logger

	mu      sync.Mutex
	session mcp.Session
}

// New creates an Adapter. dial may be nil (mcp.Dial); completion may be nil
// (no reshaping).
func New(cfg Config, dial func(context.Context, mcp.ServerConfig) (mcp.Session, error), completion api.ChatCompletionClient, logger *logging.Logger) *Adapter {
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.Argument == "" {
		cfg.Argument = DefaultArgument
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultPromptTemplate
	}
	if dial == nil {
		dial = mcp.Dial
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Adapter{cfg: cfg, dial: dial, completion: completion, logger: logger}
}

// Prompt renders the tool argument for keyword.
func (a *Adapter) Prompt(keyword string) string {
	if strings.Contains(a.cfg.PromptTemplate, "%s") {
		return fmt.Sprintf(a.cfg.PromptTemplate, keyword)
	}
	return a.cfg.PromptTemplate + " " + keyword
}

// Search calls the tool and maps its text output to listings.
func (a *Adapter) Search(ctx context.Context, keyword string) ([]schema.JobListing, error) {
	session, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := session.CallTool(ctx, a.cfg.Tool, map[string]any{a.cfg.Argument: a.Prompt(keyword)})
	if err != nil {
		a.drop(session)
		return nil, err
	}
	text := res.Text()
	if res.IsError {
		return nil, fmt.Errorf("%w: %s", ErrToolFailed, extract.Truncate(text, 200))
	}

	if items := extract.JSONArray(text); items != nil {
		return platform.ListingsFromMaps(items, a.logger), nil
	}
	if a.completion == nil || strings.TrimSpace(text) == "" {
		a.logger.Debug("tool output is not a JSON array", "tool", a.cfg.Tool, "chars", len(text))
		return []schema.JobListing{}, nil
	}
	return a.reshape(ctx, text)
}

func (a *Adapter) reshape(ctx context.Context, text string) ([]schema.JobListing, error) {
	resp, err := a.completion.CreateChatCompletion(ctx, &api.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []api.Message{
			api.SystemMessage(ReshapePrompt),
			api.UserMessage(text),
		},
		ResponseFormat: &api.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("mcptool reshape: %w", err)
	}
	content := resp.Content()
	items := extract.JSONArray(content)
	if items == nil && content != "" {
		a.logger.Warn("Reshape reply holds no listings", "tool", a.cfg.Tool, "reply", extract.Truncate(content, 200))
	}
	return platform.ListingsFromMaps(items, a.logger), nil
}

// ListTools lists the tools of the configured server.
func (a *Adapter) ListTools(ctx context.Context) ([]mcp.ToolInfo, error) {
	session, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}
	tools, err := session.ListTools(ctx)
	if err != nil {
		a.drop(session)
		return nil, err
	}
	return tools, nil
}

// Close releases the session, if any.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}

func (a *Adapter) acquire(ctx context.Context) (mcp.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return a.session, nil
	}
	s, err := a.dial(ctx, a.cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("mcptool connect: %w", err)
	}
	a.session = s
	return s, nil
}

func (a *Adapter) drop(s mcp.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == s {
		_ = s.Close()
		a.session = nil
	}
}
