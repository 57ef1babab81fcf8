// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leseb/jobsearch-gw/pkg/core/schema"
	"github.com/leseb/jobsearch-gw/pkg/diagnostics"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search every active platform",
	Long: `Search every active platform and print the merged listings as JSON.

Words are joined with spaces, so quoting the keyword is optional.
With --outcomes the output is an object with the listings and the
per-platform outcomes instead of a bare array.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("outcomes", false, "Include per-platform outcomes in the output")
	searchCmd.Flags().StringSlice("platforms", nil, "Only search these platforms (overrides active flags)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if only, _ := cmd.Flags().GetStringSlice("platforms"); len(only) > 0 {
		if err := cfg.SetActive(only); err != nil {
			return err
		}
	}

	rt, err := newRuntime(cmd, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Search.Search(cmd.Context(), strings.Join(args, " "), diagnostics.SourceCLI)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if withOutcomes, _ := cmd.Flags().GetBool("outcomes"); withOutcomes {
		return enc.Encode(struct {
			Listings []schema.JobListing      `json:"listings"`
			Outcomes []schema.PlatformOutcome `json:"outcomes"`
		}{res.Listings, res.Outcomes})
	}
	return enc.Encode(res.Listings)
}
