// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leseb/jobsearch-gw/pkg/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List configured platforms",
	Long:  `List every configured platform with its kind, active flag and search budget. Nothing is contacted.`,
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools of the configured MCP server",
	Long:  `Connect to the MCP server of the first mcp_tool platform and list its tools as JSON.`,
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tACTIVE\tTIMEOUT")
	for _, s := range cfg.Specs() {
		p := platform.Platform{Timeout: s.Timeout}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", s.Name, s.Kind, s.Active, p.Budget())
	}
	return tw.Flush()
}

func runTools(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	name, tools, err := rt.Search.ListTools(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"platform": name, "tools": tools})
}
