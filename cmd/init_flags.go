package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/tokengas/profiling"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags(cmd *cobra.Command) error {
	// Output path for configuration
	cmd.Flags().String("out", "", "output path for the new project configuration file")

	// Overwrite without prompting
	cmd.Flags().Bool("overwrite", false, "overwrite an existing configuration file without prompting")

	// Contract type
	cmd.Flags().StringP("contract-type", "t", "",
		fmt.Sprintf("standard interface of the profiled contracts: %s", strings.Join(profiling.SupportedContractTypes(), ", ")))

	// Contract specs
	cmd.Flags().StringArray("contract-specs", []string{}, "contract to profile, in the form path:ContractName,arg1,arg2,...")
	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the contract type, which must be supported
	if cmd.Flags().Changed("contract-type") {
		projectConfig.Profiling.ContractType, err = cmd.Flags().GetString("contract-type")
		if err != nil {
			return err
		}
		if _, err = profiling.LookupContractType(projectConfig.Profiling.ContractType); err != nil {
			return err
		}
	}

	// Update the contract specs, which must parse
	if cmd.Flags().Changed("contract-specs") {
		projectConfig.Profiling.ContractSpecs, err = cmd.Flags().GetStringArray("contract-specs")
		if err != nil {
			return err
		}
		if _, err = profiling.ParseContractSpecs(projectConfig.Profiling.ContractSpecs); err != nil {
			return err
		}
	}
	return nil
}
