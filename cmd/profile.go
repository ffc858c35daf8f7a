package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/cmd/exitcodes"
	"github.com/crytic/tokengas/compilation"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/crytic/tokengas/profiling"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/crytic/tokengas/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// profileCmd represents the command provider for profiling
var profileCmd = &cobra.Command{
	Use:   "profile [contract-specs...]",
	Short: "Profiles the gas used by token contracts",
	Long: `Compiles and deploys each contract, calls every method of its standard interface in order and reports the
gas used by each operation. Contracts are given as path:ContractName,arg1,arg2,... where the arguments are passed to
the constructor.`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: cmdValidProfileArgs,
	RunE:              cmdRunProfile,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the profile command
	err := addProfileFlags(profileCmd)
	if err != nil {
		cmdLogger.Panic("Failed to initialize the profile command", err)
	}

	// Add the profile command and its associated flags to the root command
	rootCmd.AddCommand(profileCmd)
}

// cmdValidProfileArgs will return which flags are valid for dynamic completion for the profile command. Positional
// arguments are completed as files.
func cmdValidProfileArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveDefault
}

// cmdRunProfile executes the CLI profile command. The project configuration is built from the defaults, the config
// file, TOKENGAS_* environment variables and finally the command's flags.
func cmdRunProfile(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProfileProjectConfig(cmd, args)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	outputFormat, err := getOutputFormat(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	gasPrice, err := getGasPrice(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLogging, err := setupLogging(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogging()
	logger := logging.GlobalLogger

	// The contract type is checked before anything else, even if there is nothing to profile
	if _, err = profiling.LookupContractType(projectConfig.Profiling.ContractType); err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	specs, err := profiling.ParseContractSpecs(projectConfig.Profiling.ContractSpecs)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if len(specs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), NoResultsMessage)
		return nil
	}

	// Stop profiling on keyboard interrupts
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	compiler, err := compilation.NewCompiler(*projectConfig.Compilation, logger)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	client, err := chain.NewClient(ctx, &projectConfig.Chain, logger)
	if err != nil {
		cmdLogger.Error("Failed to connect to the chain", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer client.Close()
	subscribeChainEvents(client, logger)

	profiler, err := profiling.NewProfiler(client, compiler, projectConfig.Profiling, logger)
	if err != nil {
		cmdLogger.Error("Failed to run the profile command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	logger.Info("Profiling ", colors.Bold, len(specs), colors.Reset, " contract(s) as ", profiler.ContractType().Name)
	reports, err := profiler.ProfileAll(ctx, specs)
	if err != nil {
		// Errors carry stack traces, which are only useful when debugging
		logger.Debug("Profiling failed", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeProfileFailed)
	}

	contractReports, err := report.NewContractReports(specs, reports)
	if err != nil {
		return err
	}
	return writeReports(cmd.OutOrStdout(), outputFormat, contractReports, gasPrice)
}

// loadProfileProjectConfig loads and validates the project configuration of the profile command.
func loadProfileProjectConfig(cmd *cobra.Command, args []string) (*config.ProjectConfig, error) {
	configPath, err := resolveProjectConfigPath(cmd)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
	}

	overrides, err := getProfileFlagOverrides(cmd, args)
	if err != nil {
		return nil, err
	}
	projectConfig, err := config.LoadProjectConfig(configPath, DefaultCompilationPlatform, overrides)
	if err != nil {
		return nil, err
	}
	if err = projectConfig.Validate(); err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// writeReports renders the reports in the requested format. A cost table follows the gas table if a gas price was
// provided.
func writeReports(w io.Writer, outputFormat string, contractReports []report.ContractReport, gasPrice *decimal.Decimal) error {
	if outputFormat == OutputFormatJSON {
		return report.WriteJSON(w, contractReports)
	}

	report.WriteTable(w, contractReports)
	if gasPrice != nil {
		report.WriteCostTable(w, contractReports, *gasPrice)
	}
	return nil
}
