package logging

// These constants are used to identify the various services that may do some logging
const (
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// CHAIN_SERVICE is the constant used to identify the chain package
	CHAIN_SERVICE = "chain"
	// PROFILING_SERVICE is the constant used to identify the profiling package
	PROFILING_SERVICE = "profiling"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)

// SERVICE_KEY is the key under which the service name of a sub-logger is recorded.
const SERVICE_KEY = "module"

// RUN_ID_KEY is the key under which the identifier of a profiling run is recorded.
const RUN_ID_KEY = "runId"
