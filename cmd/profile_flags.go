package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/tokengas/profiling"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// addProfileFlags adds the various flags for the profile command
func addProfileFlags(cmd *cobra.Command) error {
	// Get the default project config and throw an error if we cant
	defaultConfig, err := config.GetDefaultProjectConfig(DefaultCompilationPlatform)
	if err != nil {
		return err
	}

	// Prevent alphabetical sorting of usage message
	cmd.Flags().SortFlags = false

	// Config file
	cmd.Flags().String("config", "", fmt.Sprintf("path to config file (default is %s in the working directory, if it exists)", DefaultProjectConfigFilename))

	// Contract type
	cmd.Flags().StringP("contract-type", "t", "",
		fmt.Sprintf("standard interface of the profiled contracts: %s (unless a config file is provided, default is %s)",
			strings.Join(profiling.SupportedContractTypes(), ", "), defaultConfig.Profiling.ContractType))

	// Contract specs
	cmd.Flags().StringArray("contract-specs", []string{},
		"contract to profile, in the form path:ContractName,arg1,arg2,... (may be repeated, in addition to positional arguments)")

	// Output format
	cmd.Flags().StringP("output", "o", OutputFormatTable, fmt.Sprintf("output format (%s or %s)", OutputFormatTable, OutputFormatJSON))
	cmd.Flags().Bool("json", false, "output the results as JSON (same as --output json)")

	// Number of workers
	cmd.Flags().Int("workers", 0,
		fmt.Sprintf("number of contracts to profile concurrently (unless a config file is provided, default is %d)", defaultConfig.Profiling.Workers))

	// Gas price
	cmd.Flags().String("gas-price", "", "gas price in gwei, used to add a table of the cost of each operation in ether")

	// RPC url
	cmd.Flags().String("rpc-url", "", "profile on the JSON-RPC node at this url instead of the in-process chain")

	// Log level
	cmd.Flags().String("log-level", "",
		fmt.Sprintf("log level: trace, debug, info, warn, error or panic (unless a config file is provided, default is %s)", defaultConfig.Logging.Level))
	return nil
}

// getProfileFlagOverrides returns the configuration values set by the flags and positional arguments of the profile
// command, keyed by their configuration paths.
func getProfileFlagOverrides(cmd *cobra.Command, args []string) (map[string]any, error) {
	overrides := make(map[string]any)

	// Update the contract type
	if cmd.Flags().Changed("contract-type") {
		contractType, err := cmd.Flags().GetString("contract-type")
		if err != nil {
			return nil, err
		}
		overrides["profiling.contractType"] = contractType
	}

	// Update the contract specs, positional arguments first
	contractSpecs, err := cmd.Flags().GetStringArray("contract-specs")
	if err != nil {
		return nil, err
	}
	if len(args) > 0 || len(contractSpecs) > 0 {
		overrides["profiling.contractSpecs"] = append(append([]string{}, args...), contractSpecs...)
	}

	// Update number of workers
	if cmd.Flags().Changed("workers") {
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return nil, err
		}
		overrides["profiling.workers"] = workers
	}

	// Update the chain to use a JSON-RPC node
	if cmd.Flags().Changed("rpc-url") {
		rpcUrl, err := cmd.Flags().GetString("rpc-url")
		if err != nil {
			return nil, err
		}
		overrides["chain.backend"] = "rpc"
		overrides["chain.rpcUrl"] = rpcUrl
	}

	// Update the log level
	if cmd.Flags().Changed("log-level") {
		level, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return nil, err
		}
		overrides["logging.level"] = level
	}
	return overrides, nil
}

// getOutputFormat returns the output format selected by the --output and --json flags.
func getOutputFormat(cmd *cobra.Command) (string, error) {
	asJson, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	outputFormat, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}

	if asJson {
		if cmd.Flags().Changed("output") && outputFormat != OutputFormatJSON {
			return "", errors.Errorf("--json cannot be combined with --output %s", outputFormat)
		}
		return OutputFormatJSON, nil
	}
	if outputFormat != OutputFormatTable && outputFormat != OutputFormatJSON {
		return "", errors.Errorf("invalid output format '%s' (options: %s, %s)", outputFormat, OutputFormatTable, OutputFormatJSON)
	}
	return outputFormat, nil
}

// getGasPrice returns the gas price in gwei provided with --gas-price, or nil if it was not used.
func getGasPrice(cmd *cobra.Command) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed("gas-price") {
		return nil, nil
	}
	value, err := cmd.Flags().GetString("gas-price")
	if err != nil {
		return nil, err
	}
	gasPrice, err := decimal.NewFromString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid gas price '%s'", value)
	}
	if gasPrice.IsNegative() {
		return nil, errors.Errorf("gas price cannot be negative: %s", value)
	}
	return &gasPrice, nil
}
