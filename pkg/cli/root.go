// Package cli implements the join-advisor command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/logging"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join-advisor",
		Short: "Join compatibility and health analysis for tabular datasets",
		Long: `join-advisor profiles two tabular datasets, detects candidate join
keys, scores their health (match rate, date alignment, duplication), and
executes the chosen join.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newJoinCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// setup loads configuration and builds the root logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(Version)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}
