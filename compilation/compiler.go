package compilation

import (
	"encoding/hex"
	"strings"

	"github.com/crytic/tokengas/compilation/types"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Compiler compiles individual source files with a configured compilation platform.
type Compiler struct {
	// config describes the platform and its options. The target is replaced for every compiled source.
	config CompilationConfig

	// logger describes the compilation service logger.
	logger *logging.Logger
}

// NewCompiler creates a Compiler for the provided configuration. A nil logger disables logging.
func NewCompiler(config CompilationConfig, logger *logging.Logger) (*Compiler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	return &Compiler{
		config: config,
		logger: logger.NewSubLogger(logging.SERVICE_KEY, logging.COMPILATION_SERVICE),
	}, nil
}

// Platform returns the identifier of the compilation platform in use.
func (c *Compiler) Platform() string {
	return c.config.Platform
}

// CompileSource compiles the source at sourcePath and returns the resulting compilations. Errors returned by the
// platform are structured (see platforms.SourceNotFoundError, platforms.ImportNotFoundError and
// platforms.CompilerOutputError).
func (c *Compiler) CompileSource(sourcePath string) ([]types.Compilation, error) {
	platformConfig, err := c.config.GetPlatformConfig()
	if err != nil {
		return nil, err
	}
	platformConfig.SetTarget(sourcePath)

	c.logger.Info("Compiling ", colors.Bold, sourcePath, colors.Reset, " with ", c.config.Platform)
	compilations, output, err := platformConfig.Compile()
	if output = strings.TrimSpace(output); output != "" {
		c.logger.Debug("Compiler output for ", sourcePath, ":\n", output)
	}
	if err != nil {
		return nil, err
	}
	if len(compilations) == 0 {
		return nil, errors.Errorf("compiling %s produced no output", sourcePath)
	}

	if c.logger.Level() <= zerolog.DebugLevel {
		for _, compilation := range compilations {
			for _, source := range compilation.Sources {
				for name, contract := range source.Contracts {
					c.logContractMetadata(name, contract)
				}
			}
		}
	}
	return compilations, nil
}

// logContractMetadata logs the compiler version and bytecode hash embedded in a contract's runtime bytecode, when
// present.
func (c *Compiler) logContractMetadata(name string, contract types.CompiledContract) {
	metadata := contract.Metadata()
	if metadata == nil {
		return
	}
	info := logging.StructuredLogInfo{}
	if version := metadata.ExtractCompilerVersion(); version != "" {
		info["solc"] = version
	}
	if hash := metadata.ExtractBytecodeHash(); hash != nil {
		info["bytecodeHash"] = hex.EncodeToString(hash)
	}
	c.logger.Debug("Compiled contract ", name, info)
}
