// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"errors"
	"fmt"
)

var clientInfo = implementation{Name: "jobsearch-gw", Version: "0.1.0"}

// Session is an initialized connection to an MCP server, whatever the
// transport.
type Session interface {
	ListTools(ctx context.Context) ([]ToolInfo, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error)
	Close() error
}

var (
	_ Session = (*Client)(nil)
	_ Session = (*StdioSession)(nil)
)

// ServerConfig selects how to reach an MCP server. URL wins over Command.
type ServerConfig struct {
	URL     string            // streamable-HTTP endpoint
	Token   string            // optional bearer token for URL
	Command string            // executable for stdio, e.g. "npx"
	Args    []string          // e.g. ["-y", "@brightdata/mcp"]
	Env     map[string]string // extra environment for Command, e.g. API_TOKEN
}

// ErrNoServer is returned by Dial when neither URL nor Command is set.
var ErrNoServer = errors.New("mcp: no server url or command configured")

// Dial opens and initializes a session according to cfg.
func Dial(ctx context.Context, cfg ServerConfig) (Session, error) {
	switch {
	case cfg.URL != "":
		var opts []ClientOption
		if cfg.Token != "" {
			opts = append(opts, WithHeader("Authorization", "Bearer "+cfg.Token))
		}
		c := NewClient(cfg.URL, opts...)
		if err := c.Initialize(ctx); err != nil {
			return nil, err
		}
		return c, nil
	case cfg.Command != "":
		s, err := ConnectCommand(ctx, cfg.Command, cfg.Args, cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("mcp stdio %s: %w", cfg.Command, err)
		}
		return s, nil
	default:
		return nil, ErrNoServer
	}
}
