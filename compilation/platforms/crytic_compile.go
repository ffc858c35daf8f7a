package platforms

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/crytic/tokengas/compilation/types"
	"github.com/crytic/tokengas/utils"
	"github.com/pkg/errors"
)

// CryticCompilationConfig describes the configuration used to compile a target with crytic-compile, which supports
// framework projects in addition to single source files.
type CryticCompilationConfig struct {
	// Target describes the file or project directory to compile.
	Target string `json:"target"`

	// SolcVersion describes the solc version to select with solc-select before compiling. Empty keeps the active one.
	SolcVersion string `json:"solcVersion"`

	// ExportDirectory describes where compilation artifacts are written. An empty value uses a temporary directory.
	ExportDirectory string `json:"exportDirectory"`

	// Args describes additional arguments passed to crytic-compile.
	Args []string `json:"args,omitempty"`
}

// NewCryticCompilationConfig returns a CryticCompilationConfig for the provided target.
func NewCryticCompilationConfig(target string) *CryticCompilationConfig {
	return &CryticCompilationConfig{
		Target: target,
		Args:   []string{},
	}
}

// Platform returns the platform identifier for crytic-compile.
func (c *CryticCompilationConfig) Platform() string {
	return "crytic-compile"
}

// GetTarget returns the target for compilation
func (c *CryticCompilationConfig) GetTarget() string {
	return c.Target
}

// SetTarget sets the new target for compilation
func (c *CryticCompilationConfig) SetTarget(newTarget string) {
	c.Target = newTarget
}

// Compile runs crytic-compile against the target, exporting artifacts in the solc combined JSON format, and parses
// every exported artifact.
func (c *CryticCompilationConfig) Compile() ([]types.Compilation, string, error) {
	if _, err := os.Stat(c.Target); err != nil {
		return nil, "", &SourceNotFoundError{Path: c.Target, Err: err}
	}

	if c.SolcVersion != "" {
		out, err := exec.Command("solc-select", "use", c.SolcVersion, "--always-install").CombinedOutput()
		if err != nil {
			return nil, "", &CompilerOutputError{Platform: "solc-select", Output: string(out), Err: err}
		}
	}

	exportDirectory := c.ExportDirectory
	if exportDirectory == "" {
		tempDirectory, err := os.MkdirTemp("", "tokengas-crytic-export-")
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
		defer os.RemoveAll(tempDirectory)
		exportDirectory = tempDirectory
	}

	args := append([]string{c.Target, "--export-format", "solc", "--export-dir", exportDirectory}, c.Args...)
	cmd := exec.Command("crytic-compile", args...)
	_, _, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, "", classifyCompilerFailure("crytic-compile", c.Target, string(cmdCombined), err)
	}

	matches, err := filepath.Glob(filepath.Join(exportDirectory, "*.json"))
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	sort.Strings(matches)

	compilations := make([]types.Compilation, 0, len(matches))
	for _, match := range matches {
		b, err := os.ReadFile(match)
		if err != nil {
			return nil, "", errors.WithStack(err)
		}
		compilation, err := parseCombinedJSON(b)
		if err != nil {
			return nil, "", errors.Wrapf(err, "could not parse crytic-compile artifact %s", match)
		}
		compilations = append(compilations, *compilation)
	}
	return compilations, string(cmdCombined), nil
}
