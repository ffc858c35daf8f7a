package compilation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/tokengas/compilation/platforms"
	"github.com/crytic/tokengas/utils/testutils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSupportedPlatforms ensures each registered platform produces a decodable default config.
func TestSupportedPlatforms(t *testing.T) {
	assert.Equal(t, []string{"crytic-compile", "solc"}, GetSupportedCompilationPlatforms())

	for _, platform := range GetSupportedCompilationPlatforms() {
		config, err := NewCompilationConfig(platform)
		require.NoError(t, err)
		assert.Equal(t, platform, config.Platform)

		platformConfig, err := config.GetPlatformConfig()
		require.NoError(t, err)
		assert.Equal(t, platform, platformConfig.Platform())
	}

	_, err := NewCompilationConfig("truffle")
	assert.Error(t, err)
}

// TestCompilationConfigSetTarget ensures the target is persisted into the serialized platform config, and that
// config values which were not changed survive the round trip.
func TestCompilationConfigSetTarget(t *testing.T) {
	config, err := NewCompilationConfigFromPlatformConfig(&platforms.SolcCompilationConfig{
		Target: "contract.sol",
		Args:   []string{"--optimize"},
	})
	require.NoError(t, err)
	require.NoError(t, config.SetTarget("contracts/EIP20.sol"))

	platformConfig, err := config.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, "contracts/EIP20.sol", platformConfig.GetTarget())
	assert.Equal(t, []string{"--optimize"}, platformConfig.(*platforms.SolcCompilationConfig).Args)

	// Retargeting a decoded platform config does not affect the stored config
	platformConfig.SetTarget("other.sol")
	platformConfig, err = config.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, "contracts/EIP20.sol", platformConfig.GetTarget())
}

// TestCompilationConfigValidate ensures unsupported platforms and malformed platform configs are rejected.
func TestCompilationConfigValidate(t *testing.T) {
	assert.Error(t, (&CompilationConfig{Platform: "brownie"}).Validate())

	malformed := json.RawMessage(`{"target": 5}`)
	assert.Error(t, (&CompilationConfig{Platform: "solc", PlatformConfig: &malformed}).Validate())

	// A missing platform config falls back to the platform defaults
	assert.NoError(t, (&CompilationConfig{Platform: "solc"}).Validate())
}

// TestCompileMissingSource ensures a missing source file is reported with a structured error before any compiler is
// invoked.
func TestCompileMissingSource(t *testing.T) {
	config, err := NewCompilationConfig("solc")
	require.NoError(t, err)
	compiler, err := NewCompiler(*config, nil)
	require.NoError(t, err)

	_, err = compiler.CompileSource(filepath.Join(t.TempDir(), "Missing.sol"))
	var sourceNotFound *platforms.SourceNotFoundError
	assert.True(t, errors.As(err, &sourceNotFound))
}

// TestCompileSource compiles a contract through the compiler facade.
func TestCompileSource(t *testing.T) {
	testutils.RequireExecutable(t, "solc")

	contractPath := filepath.Join(t.TempDir(), "Box.sol")
	require.NoError(t, os.WriteFile(contractPath, []byte(`
pragma solidity >=0.5.0;

contract Box {
    uint public value;

    function set(uint v) external {
        value = v;
    }
}`), 0644))

	config, err := NewCompilationConfig("solc")
	require.NoError(t, err)
	compiler, err := NewCompiler(*config, nil)
	require.NoError(t, err)
	assert.Equal(t, "solc", compiler.Platform())

	compilations, err := compiler.CompileSource(contractPath)
	require.NoError(t, err)

	contract, found := compilations[0].FindContract(contractPath, "Box")
	require.True(t, found)
	assert.True(t, contract.HasBytecode())
	assert.True(t, contract.HasInterface())
}
