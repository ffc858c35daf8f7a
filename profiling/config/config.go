package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	chainConfig "github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/compilation"
	"github.com/crytic/tokengas/logging"
	"github.com/knadh/koanf"
	koanfJson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EnvironmentPrefix is the prefix of environment variables which override configuration values.
const EnvironmentPrefix = "TOKENGAS_"

// ProjectConfig describes the configuration of a profiling project.
type ProjectConfig struct {
	// Profiling describes the configuration used by the profiling.Profiler.
	Profiling ProfilingConfig `json:"profiling"`

	// Compilation describes the configuration used to compile contracts.
	Compilation *compilation.CompilationConfig `json:"compilation"`

	// Chain describes the test network contracts are deployed to.
	Chain chainConfig.ChainConfig `json:"chain"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`
}

// ProfilingConfig describes the configuration options used by the profiling.Profiler.
type ProfilingConfig struct {
	// ContractType describes the standard interface the profiled contracts implement.
	ContractType string `json:"contractType"`

	// ContractSpecs describes the contracts to profile, each in the form "path:ContractName,arg1,arg2,...".
	ContractSpecs []string `json:"contractSpecs"`

	// Workers describes how many contracts are profiled concurrently. Each worker needs two accounts.
	Workers int `json:"workers"`

	// GasLimitMultiplier describes the factor applied to gas estimates to obtain transaction gas limits.
	GasLimitMultiplier uint64 `json:"gasLimitMultiplier"`

	// ReceiptPolling describes how transaction receipts are awaited.
	ReceiptPolling ReceiptPollingConfig `json:"receiptPolling"`
}

// ReceiptPollingConfig describes the exponential backoff used while waiting for transactions to be mined.
type ReceiptPollingConfig struct {
	// InitialIntervalMilliseconds describes the delay after the first unsuccessful poll.
	InitialIntervalMilliseconds int `json:"initialIntervalMilliseconds"`

	// MaxIntervalMilliseconds caps the delay between polls.
	MaxIntervalMilliseconds int `json:"maxIntervalMilliseconds"`

	// Multiplier describes the growth of the delay after each unsuccessful poll.
	Multiplier float64 `json:"multiplier"`

	// TimeoutMilliseconds describes how long to wait for a transaction to be mined before failing.
	TimeoutMilliseconds int `json:"timeoutMilliseconds"`
}

// InitialInterval returns the initial polling interval.
func (r ReceiptPollingConfig) InitialInterval() time.Duration {
	return time.Duration(r.InitialIntervalMilliseconds) * time.Millisecond
}

// MaxInterval returns the maximum polling interval.
func (r ReceiptPollingConfig) MaxInterval() time.Duration {
	return time.Duration(r.MaxIntervalMilliseconds) * time.Millisecond
}

// Timeout returns the polling timeout.
func (r ReceiptPollingConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMilliseconds) * time.Millisecond
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes the minimum severity of emitted logs (trace, debug, info, warn, error or panic).
	Level string `json:"level"`

	// EnableConsoleLogging describes whether logs are written to the console (stderr).
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// NoColor disables colored console output.
	NoColor bool `json:"noColor"`

	// File describes an optional rotating log file.
	File logging.FileConfig `json:"file"`
}

// ZerologLevel parses Level.
func (l LoggingConfig) ZerologLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", l.Level)
	}
	return level, nil
}

// environmentOverrides maps the supported environment variables (without EnvironmentPrefix) to configuration keys.
var environmentOverrides = map[string]string{
	"CONTRACT_TYPE":      "profiling.contractType",
	"WORKERS":            "profiling.workers",
	"RECEIPT_TIMEOUT_MS": "profiling.receiptPolling.timeoutMilliseconds",
	"CHAIN_BACKEND":      "chain.backend",
	"RPC_URL":            "chain.rpcUrl",
	"PRIVATE_KEYS":       "chain.privateKeys",
	"LOG_LEVEL":          "logging.level",
}

// environmentValue converts an environment variable into a configuration key and value. Variables which are not
// supported are skipped.
func environmentValue(name string, value string) (string, any) {
	key, ok := environmentOverrides[strings.TrimPrefix(name, EnvironmentPrefix)]
	if !ok {
		return "", nil
	}
	switch key {
	case "profiling.workers", "profiling.receiptPolling.timeoutMilliseconds":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return key, n
		}
	case "chain.privateKeys":
		return key, strings.Split(value, ",")
	}
	return key, value
}

// LoadProjectConfig builds a ProjectConfig by layering, from lowest to highest precedence: the defaults for the
// platform, the JSON file at path (if non-empty), TOKENGAS_* environment variables and the provided overrides, which
// are keyed by dotted configuration paths (e.g. "profiling.workers").
func LoadProjectConfig(path string, platform string, overrides map[string]any) (*ProjectConfig, error) {
	defaults, err := GetDefaultProjectConfig(platform)
	if err != nil {
		return nil, err
	}
	defaultBytes, err := json.Marshal(defaults)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")
	if err = k.Load(rawbytes.Provider(defaultBytes), koanfJson.Parser()); err != nil {
		return nil, errors.WithStack(err)
	}
	if path != "" {
		if err = k.Load(file.Provider(path), koanfJson.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not read project config %s", path)
		}
	}
	if err = k.Load(env.ProviderWithValue(EnvironmentPrefix, ".", environmentValue), nil); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(overrides) > 0 {
		if err = k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	merged, err := k.Marshal(koanfJson.Parser())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	projectConfig := &ProjectConfig{}
	if err = json.Unmarshal(merged, projectConfig); err != nil {
		return nil, errors.Wrap(err, "invalid project config")
	}
	return projectConfig, nil
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path, filling in defaults for
// any values it omits. Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig, err := GetDefaultProjectConfig("")
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, projectConfig); err != nil {
		return nil, errors.WithStack(err)
	}
	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0644))
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if p.Profiling.ContractType == "" {
		return errors.New("a contract type must be provided")
	}
	if p.Profiling.Workers <= 0 {
		return errors.New("worker count must be a positive number")
	}
	if p.Profiling.GasLimitMultiplier == 0 {
		return errors.New("gas limit multiplier must be a positive number")
	}

	polling := p.Profiling.ReceiptPolling
	if polling.InitialIntervalMilliseconds <= 0 || polling.TimeoutMilliseconds <= 0 {
		return errors.New("receipt polling interval and timeout must be positive numbers")
	}
	if polling.MaxIntervalMilliseconds < polling.InitialIntervalMilliseconds {
		return errors.New("maximum receipt polling interval cannot be less than the initial interval")
	}
	if polling.Multiplier < 1 {
		return errors.New("receipt polling multiplier cannot be less than 1")
	}

	if p.Compilation == nil {
		return errors.New("a compilation config must be provided")
	}
	if err := p.Compilation.Validate(); err != nil {
		return err
	}
	if err := p.Chain.Validate(); err != nil {
		return err
	}
	if _, err := p.Logging.ZerologLevel(); err != nil {
		return err
	}
	return nil
}
