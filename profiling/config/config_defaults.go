package config

import (
	chainConfig "github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/compilation"
	"github.com/crytic/tokengas/logging"
)

// GetDefaultProjectConfig obtains a default configuration for a project. It populates a default compilation config
// based on the provided platform, or a nil one if an empty string is provided.
func GetDefaultProjectConfig(platform string) (*ProjectConfig, error) {
	var (
		compilationConfig *compilation.CompilationConfig
		err               error
	)
	if platform != "" {
		compilationConfig, err = compilation.NewCompilationConfig(platform)
		if err != nil {
			return nil, err
		}
	}

	projectConfig := &ProjectConfig{
		Profiling: ProfilingConfig{
			ContractType:       "erc20",
			ContractSpecs:      []string{},
			Workers:            1,
			GasLimitMultiplier: 2,
			ReceiptPolling: ReceiptPollingConfig{
				InitialIntervalMilliseconds: 50,
				MaxIntervalMilliseconds:     1000,
				Multiplier:                  1.5,
				TimeoutMilliseconds:         30000,
			},
		},
		Compilation: compilationConfig,
		Chain:       *chainConfig.DefaultChainConfig(),
		Logging: LoggingConfig{
			Level:                "info",
			EnableConsoleLogging: true,
			NoColor:              false,
			File: logging.FileConfig{
				Path:       "",
				Structured: true,
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   false,
			},
		},
	}
	return projectConfig, nil
}
