package profiling

import (
	"github.com/crytic/tokengas/compilation/types"
	"github.com/crytic/tokengas/logging"
)

// DefaultGasLimitMultiplier is the factor applied to gas estimates to obtain transaction gas limits.
const DefaultGasLimitMultiplier = 2

// Compiler describes the compiler used to obtain the contracts to deploy.
type Compiler interface {
	// CompileSource compiles the source file at the provided path.
	CompileSource(sourcePath string) ([]types.Compilation, error)
}

// PipelineOptions describes the configuration shared by the deployer and method steps of a pipeline.
type PipelineOptions struct {
	// Polling describes how receipts are awaited.
	Polling PollingConfig

	// GasLimitMultiplier describes the factor applied to gas estimates to obtain gas limits.
	GasLimitMultiplier uint64

	// Logger describes the logger pipeline stages log to. A nil logger uses the global logger.
	Logger *logging.Logger
}

// DefaultPipelineOptions returns the options used when none are provided.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Polling:            DefaultPollingConfig(),
		GasLimitMultiplier: DefaultGasLimitMultiplier,
	}
}

// logger returns the configured logger or the global one.
func (o PipelineOptions) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.GlobalLogger
	}
	return o.Logger
}

// gasLimit applies the gas limit multiplier to an estimate.
func (o PipelineOptions) gasLimit(estimate uint64) uint64 {
	multiplier := o.GasLimitMultiplier
	if multiplier == 0 {
		multiplier = DefaultGasLimitMultiplier
	}
	return estimate * multiplier
}
