package cmd

import (
	"context"
	"os"

	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/version"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the cmd package to report command failures on the console.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger(logging.SERVICE_KEY, logging.CLI_SERVICE)

var rootCmd = &cobra.Command{
	Use:     "tokengas",
	Short:   "A gas profiler for ERC20 and ERC721 token contracts",
	Long:    "tokengas deploys token contracts to a test network, calls each method of their standard interface and reports the gas used by every operation",
	Version: version.GetInfo().Short(),
}

// Execute loads the .env file of the working directory, if any, and runs the root command.
func Execute() error {
	if err := loadEnvironmentFile(DefaultEnvironmentFilename); err != nil {
		return err
	}
	return rootCmd.ExecuteContext(context.Background())
}

// loadEnvironmentFile loads environment variables from the file at path if it exists. Variables which are already set
// are not overridden.
func loadEnvironmentFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "could not load environment file %s", path)
}

// commandContext returns the context of the command, or a background context if it has none.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
