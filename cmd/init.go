package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/tokengas/compilation"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// supportedPlatforms lists the compilation platforms offered by init completions and accepted as its argument.
var supportedPlatforms = compilation.GetSupportedCompilationPlatforms()

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:               "init [platform]",
	Short:             "Writes a default tokengas.json project configuration",
	Long:              `Writes a default tokengas.json project configuration for the given compilation platform (solc by default)`,
	Args:              cmdValidateInitArgs,
	ValidArgsFunction: cmdValidInitArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	if err := addInitFlags(initCmd); err != nil {
		cmdLogger.Panic("Failed to initialize the init command", err)
	}
	rootCmd.AddCommand(initCmd)
}

// cmdValidInitArgs completes the init command with its unused flags, and with the platforms while none was given.
func cmdValidInitArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var unusedFlags []string
	flagUsed := false
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		} else {
			flagUsed = true
		}
	})

	if len(args) == 0 && !flagUsed {
		unusedFlags = append(unusedFlags, supportedPlatforms...)
	}
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateInitArgs accepts at most one argument, which must name a supported compilation platform.
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	options := strings.Join(supportedPlatforms, ", ")
	var err error
	if len(args) > 1 {
		err = errors.Errorf("init accepts at most 1 platform argument (options: %s), the default platform is %s", options, DefaultCompilationPlatform)
	} else if len(args) == 1 && !compilation.IsSupportedCompilationPlatform(args[0]) {
		err = errors.Errorf("init was provided invalid platform argument '%s' (options: %s)", args[0], options)
	}
	if err != nil {
		cmdLogger.Error("Failed to validate args to the init command", err)
	}
	return err
}

// cmdRunInit writes the default project configuration for the selected platform, adjusted by the init flags.
func cmdRunInit(cmd *cobra.Command, args []string) error {
	written, outputPath, err := writeInitConfig(cmd, args)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	if !written {
		fmt.Fprintln(cmd.OutOrStdout(), "Operation canceled.")
		return nil
	}

	if absoluteOutputPath, err := filepath.Abs(outputPath); err == nil {
		outputPath = absoluteOutputPath
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

// writeInitConfig builds and writes the project configuration. Returns false if the user declined to overwrite an
// existing file, along with the output path.
func writeInitConfig(cmd *cobra.Command, args []string) (bool, string, error) {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return false, "", err
	}
	if !cmd.Flags().Changed("out") {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return false, "", errors.WithStack(err)
		}
		outputPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	platform := DefaultCompilationPlatform
	if len(args) == 1 {
		platform = args[0]
	}
	projectConfig, err := config.GetDefaultProjectConfig(platform)
	if err != nil {
		return false, outputPath, err
	}
	if err = updateProjectConfigWithInitFlags(cmd, projectConfig); err != nil {
		return false, outputPath, err
	}

	if _, err = os.Stat(outputPath); err == nil {
		confirmed, err := confirmOverwrite(cmd)
		if err != nil || !confirmed {
			return false, outputPath, err
		}
	}
	return true, outputPath, projectConfig.WriteToFile(outputPath)
}

// confirmOverwrite asks the user whether an existing configuration may be replaced, unless --overwrite was given.
func confirmOverwrite(cmd *cobra.Command) (bool, error) {
	overwrite, err := cmd.Flags().GetBool("overwrite")
	if err != nil || overwrite {
		return overwrite, err
	}

	fmt.Fprint(cmd.OutOrStdout(), "The file already exists. Overwrite? (y/n): ")
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		return false, errors.Wrap(err, "could not read the overwrite confirmation")
	}
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y", nil
}
