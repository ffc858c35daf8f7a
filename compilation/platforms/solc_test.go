package platforms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver"
	"github.com/crytic/tokengas/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolcVersion(t *testing.T) {
	testutils.RequireExecutable(t, "solc")
	_, err := GetSystemSolcVersion()
	assert.NoError(t, err)
}

// TestSolcOutputOptions ensures compact-format is only requested from compilers which support it.
func TestSolcOutputOptions(t *testing.T) {
	assert.Equal(t, "abi,bin,bin-runtime,compact-format", GetSolcOutputOptions(semver.MustParse("0.5.17")))
	assert.Equal(t, "abi,bin,bin-runtime", GetSolcOutputOptions(semver.MustParse("0.8.19")))
	assert.Equal(t, "abi,bin,bin-runtime", GetSolcOutputOptions(semver.MustParse("0.4.11")))
}

func TestSimpleSolcCompilation(t *testing.T) {
	testutils.RequireExecutable(t, "solc")

	contractSource := `
pragma solidity >=0.5.0;

interface Counter {
    function increment() external;
}

contract SimpleSolcCompilation is Counter {
    uint public count;

    function increment() external {
        count += 1;
    }
}`

	contractPath := filepath.Join(t.TempDir(), "simple_solc_compilation.sol")
	require.NoError(t, os.WriteFile(contractPath, []byte(contractSource), 0644))

	solc := NewSolcCompilationConfig(contractPath)
	compilations, _, err := solc.Compile()
	require.NoError(t, err)
	require.Len(t, compilations, 1)

	contract, found := compilations[0].FindContract(contractPath, "SimpleSolcCompilation")
	require.True(t, found)
	assert.True(t, contract.HasBytecode())
	assert.Contains(t, contract.Abi.Methods, "increment")

	// Interfaces produce an ABI but no bytecode
	counter, found := compilations[0].FindContract(contractPath, "Counter")
	require.True(t, found)
	assert.False(t, counter.HasBytecode())
}

// TestSolcMissingFiles ensures missing targets and imports are reported as structured errors.
func TestSolcMissingFiles(t *testing.T) {
	_, _, err := NewSolcCompilationConfig(filepath.Join(t.TempDir(), "missing.sol")).Compile()
	var sourceErr *SourceNotFoundError
	assert.ErrorAs(t, err, &sourceErr)

	testutils.RequireExecutable(t, "solc")
	contractPath := filepath.Join(t.TempDir(), "importer.sol")
	require.NoError(t, os.WriteFile(contractPath, []byte(`import "./DoesNotExist.sol"; contract Importer {}`), 0644))
	_, _, err = NewSolcCompilationConfig(contractPath).Compile()
	var importErr *ImportNotFoundError
	assert.ErrorAs(t, err, &importErr)
}
