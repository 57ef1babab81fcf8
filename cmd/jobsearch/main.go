// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leseb/jobsearch-gw/pkg/core/config"
	"github.com/leseb/jobsearch-gw/pkg/core/services"
	"github.com/leseb/jobsearch-gw/pkg/observability/logging"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jobsearch",
	Short: "Job Search Gateway CLI",
	Long: `jobsearch runs the gateway's searches from the command line.

It reads the same configuration as the server, so it is the quickest way to
check a platform before switching it on.

Examples:
  jobsearch search "golang developer"
  jobsearch search rust --outcomes
  jobsearch platforms
  jobsearch tools`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file loaded before the configuration")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr")
}

// loadConfig reads the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger logs to stderr with --verbose and discards otherwise, so stdout
// only carries command output.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return logging.Discard()
	}
	return logging.New(logging.Config{Level: cfg.Logging.Level, Format: "text", Output: cmd.ErrOrStderr()})
}

// loadRuntime loads the configuration and builds the search runtime.
func loadRuntime(cmd *cobra.Command) (*services.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newRuntime(cmd, cfg)
}

func newRuntime(cmd *cobra.Command, cfg *config.Config) (*services.Runtime, error) {
	return services.NewRuntime(cmd.Context(), cfg, newLogger(cmd, cfg), nil)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jobsearch %s (built %s)\n", Version, BuildTime)
	},
}
