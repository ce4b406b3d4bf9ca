// Package cli implements the jwtauth-admin command line tool.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/infrastructure/monitoring"
	"github.com/turtacn/jwtauth/pkg/logger"
)

type rootOptions struct {
	configPath string
	validity   time.Duration
}

// NewRootCmd builds the jwtauth-admin command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "jwtauth-admin",
		Short: "Administer the jwtauth service",
		Long: `jwtauth-admin generates signing secrets and issues or inspects bearer tokens
using the same configuration as the server.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the configuration file")

	rootCmd.AddCommand(newKeygenCmd(opts), newTokenCmd(opts))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	// stdout carries command output, so logs go to stderr.
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console", OutputPath: "stderr"})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
