// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StdioSession wraps a go-sdk client session, typically one attached to a
// spawned MCP server process such as `npx @brightdata/mcp`.
type StdioSession struct {
	session *mcpsdk.ClientSession
}

// ConnectCommand spawns command with args and the current environment plus
// env, and performs the MCP handshake over its stdin/stdout.
func ConnectCommand(ctx context.Context, command string, args []string, env map[string]string) (*StdioSession, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr
	return ConnectTransport(ctx, &mcpsdk.CommandTransport{Command: cmd})
}

// ConnectTransport performs the handshake over an arbitrary go-sdk
// transport. Tests use in-memory transports.
func ConnectTransport(ctx context.Context, transport mcpsdk.Transport) (*StdioSession, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    clientInfo.Name,
		Version: clientInfo.Version,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &StdioSession{session: session}, nil
}

// ListTools returns the tools exposed by the server.
func (s *StdioSession) ListTools(ctx context.Context) ([]ToolInfo, error) {
	res, err := s.session.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("mcp tools/list: %w", err)
	}

	tools := make([]ToolInfo, 0, len(res.Tools))
	for _, t := range res.Tools {
		info := ToolInfo{Name: t.Name, Description: t.Description}
		if t.InputSchema != nil {
			if raw, err := json.Marshal(t.InputSchema); err == nil {
				_ = json.Unmarshal(raw, &info.InputSchema)
			}
		}
		tools = append(tools, info)
	}
	return tools, nil
}

// CallTool invokes a tool and converts the result to the package's wire types.
func (s *StdioSession) CallTool(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	res, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("mcp tools/call %s: %w", name, err)
	}

	out := &ToolCallResult{IsError: res.IsError}
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			out.Content = append(out.Content, ContentBlock{Type: "text", Text: tc.Text})
		}
	}
	return out, nil
}

// Close terminates the session and, for command transports, the process.
func (s *StdioSession) Close() error {
	return s.session.Close()
}
