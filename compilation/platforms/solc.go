package platforms

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver"
	"github.com/crytic/tokengas/compilation/types"
	"github.com/crytic/tokengas/utils"
	"github.com/pkg/errors"
)

// missingImportPattern matches the compiler diagnostic emitted when an imported source cannot be resolved.
var missingImportPattern = regexp.MustCompile(`Source "([^"]+)" not found`)

// compactFormatConstraint describes the compiler versions which accept the "compact-format" output option.
var compactFormatConstraint, _ = semver.NewConstraint(">= 0.4.12, < 0.8.10")

// SolcCompilationConfig describes the configuration used to compile a single source file with the solc binary found
// on the system path.
type SolcCompilationConfig struct {
	// Target describes the source file to compile.
	Target string `json:"target"`

	// Args describes additional arguments passed to solc, such as remappings.
	Args []string `json:"args,omitempty"`
}

// NewSolcCompilationConfig returns a SolcCompilationConfig for the provided target.
func NewSolcCompilationConfig(target string) *SolcCompilationConfig {
	return &SolcCompilationConfig{
		Target: target,
		Args:   []string{},
	}
}

// Platform returns the platform identifier for solc.
func (s *SolcCompilationConfig) Platform() string {
	return "solc"
}

// GetTarget returns the target for compilation
func (s *SolcCompilationConfig) GetTarget() string {
	return s.Target
}

// SetTarget sets the new target for compilation
func (s *SolcCompilationConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

// GetSystemSolcVersion runs `solc --version` and parses the compiler version out of its output.
func GetSystemSolcVersion() (*semver.Version, error) {
	out, err := exec.Command("solc", "--version").CombinedOutput()
	if err != nil {
		return nil, &CompilerOutputError{Platform: "solc", Output: string(out), Err: err}
	}

	exp := regexp.MustCompile(`\d+\.\d+\.\d+`)
	versionStr := exp.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse solc version using 'solc --version'")
	}
	return semver.NewVersion(versionStr)
}

// GetSolcOutputOptions determines what output options should be requested from solc given its version.
func GetSolcOutputOptions(v *semver.Version) string {
	if compactFormatConstraint.Check(v) {
		return "abi,bin,bin-runtime,compact-format"
	}
	return "abi,bin,bin-runtime"
}

// Compile runs solc against the target and returns the parsed compilation along with the compiler's diagnostic output.
func (s *SolcCompilationConfig) Compile() ([]types.Compilation, string, error) {
	if _, err := os.Stat(s.Target); err != nil {
		return nil, "", &SourceNotFoundError{Path: s.Target, Err: err}
	}

	v, err := GetSystemSolcVersion()
	if err != nil {
		return nil, "", err
	}

	// Allow imports relative to the directory containing the target
	args := []string{s.Target, "--combined-json", GetSolcOutputOptions(v), "--allow-paths", filepath.Dir(s.Target)}
	args = append(args, s.Args...)

	cmd := exec.Command("solc", args...)
	cmdStdout, cmdStderr, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, "", classifyCompilerFailure("solc", s.Target, string(cmdCombined), err)
	}

	compilation, err := parseCombinedJSON(cmdStdout)
	if err != nil {
		return nil, "", err
	}
	return []types.Compilation{*compilation}, string(cmdStderr), nil
}

// classifyCompilerFailure converts a failed compiler invocation into a structured error.
func classifyCompilerFailure(platform string, target string, output string, err error) error {
	if match := missingImportPattern.FindStringSubmatch(output); match != nil {
		return &ImportNotFoundError{Path: target, Import: match[1], Output: output}
	}
	return &CompilerOutputError{Platform: platform, Output: output, Err: err}
}
