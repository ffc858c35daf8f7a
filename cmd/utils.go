package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/crytic/tokengas/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// resolveProjectConfigPath returns the project config file a command should read:
// #1: If --config was used, the provided file, which must exist.
// #2: Otherwise the DefaultProjectConfigFilename in the working directory, if it exists.
// #3: Otherwise an empty path, meaning the default project configuration is used.
func resolveProjectConfigPath(cmd *cobra.Command) (string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}

	// Possibility #1: --config was used
	if cmd.Flags().Changed("config") {
		if _, err = os.Stat(configPath); err != nil {
			return "", errors.Wrapf(err, "could not find the config file at %s", configPath)
		}
		return configPath, nil
	}

	// Possibility #2: the default config file exists in the working directory
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", errors.WithStack(err)
	}
	configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	if utils.FileExists(configPath) {
		return configPath, nil
	}

	// Possibility #3: use the default project config
	return "", nil
}

// setupLogging replaces the global logger with one configured by loggingConfig. Returns a function which closes the
// log file, if one was opened.
func setupLogging(loggingConfig config.LoggingConfig) (func(), error) {
	level, err := loggingConfig.ZerologLevel()
	if err != nil {
		return nil, err
	}
	if loggingConfig.NoColor {
		colors.DisableColor()
	}

	logging.GlobalLogger = logging.NewLogger(level, loggingConfig.EnableConsoleLogging)
	if !loggingConfig.File.Enabled() {
		return func() {}, nil
	}

	var fileWriter io.WriteCloser
	fileWriter, err = logging.NewFileWriter(loggingConfig.File)
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(fileWriter, loggingConfig.File.Format())
	return func() {
		logging.GlobalLogger.RemoveWriter(fileWriter)
		_ = fileWriter.Close()
	}, nil
}

// subscribeChainEvents logs the blocks committed by a simulated chain at trace level. Other backends publish no events.
func subscribeChainEvents(client chain.Client, logger *logging.Logger) {
	backend, ok := client.(*chain.SimulatedBackend)
	if !ok {
		return
	}
	backend.Events.BlockCommitted.Subscribe(func(event chain.BlockCommittedEvent) error {
		logger.Trace("Committed block ", event.BlockHash.Hex())
		return nil
	})
}
