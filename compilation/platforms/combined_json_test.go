package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseCombinedJSON ensures both ABI encodings are accepted and that interfaces without bytecode are recorded
// with empty bytecode.
func TestParseCombinedJSON(t *testing.T) {
	output := []byte(`{
		"contracts": {
			"contracts/Token.sol:Token": {
				"abi": [{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}],
				"bin": "6080604052",
				"bin-runtime": "6080"
			},
			"contracts/Token.sol:TokenInterface": {
				"abi": "[]",
				"bin": "",
				"bin-runtime": ""
			},
			"contracts/Token.sol:NoInterface": {
				"bin": "00",
				"bin-runtime": "00"
			}
		},
		"sources": {"contracts/Token.sol": {"AST": {"nodeType": "SourceUnit"}}},
		"version": "0.8.19+commit.7dd6d404"
	}`)

	compilation, err := parseCombinedJSON(output)
	require.NoError(t, err)

	token, found := compilation.FindContract("contracts/Token.sol", "Token")
	require.True(t, found)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, token.InitBytecode)
	assert.Contains(t, token.Abi.Methods, "totalSupply")

	tokenInterface, found := compilation.FindContract("contracts/Token.sol", "TokenInterface")
	require.True(t, found)
	assert.False(t, tokenInterface.HasBytecode())
	assert.True(t, tokenInterface.HasInterface())

	noInterface, found := compilation.FindContract("contracts/Token.sol", "NoInterface")
	require.True(t, found)
	assert.False(t, noInterface.HasInterface())

	assert.NotNil(t, compilation.Sources["contracts/Token.sol"].Ast)
}

// TestParseCombinedJSONUnlinkedLibraries ensures a contract needing library linking is flagged without making the
// other contracts of the same output unusable.
func TestParseCombinedJSONUnlinkedLibraries(t *testing.T) {
	output := []byte(`{"contracts": {
		"T.sol:Token": {"abi": [], "bin": "6001", "bin-runtime": "6001"},
		"T.sol:UsesLib": {"abi": [], "bin": "73__$abc$__6001", "bin-runtime": "73__$abc$__6001"}
	}}`)
	compilation, err := parseCombinedJSON(output)
	require.NoError(t, err)

	token, found := compilation.FindContract("T.sol", "Token")
	require.True(t, found)
	assert.Equal(t, []byte{0x60, 0x01}, token.InitBytecode)
	assert.False(t, token.RequiresLinking)

	usesLib, found := compilation.FindContract("T.sol", "UsesLib")
	require.True(t, found)
	assert.True(t, usesLib.RequiresLinking)
	assert.False(t, usesLib.HasBytecode())
}

// TestClassifyCompilerFailure ensures missing imports are distinguished from other compiler failures.
func TestClassifyCompilerFailure(t *testing.T) {
	err := classifyCompilerFailure("solc", "Token.sol", `Error: Source "./Missing.sol" not found: File not found.`, assert.AnError)
	var importErr *ImportNotFoundError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "./Missing.sol", importErr.Import)

	err = classifyCompilerFailure("solc", "Token.sol", "ParserError: Expected ';'", assert.AnError)
	var outputErr *CompilerOutputError
	require.ErrorAs(t, err, &outputErr)
	assert.ErrorIs(t, err, assert.AnError)
}
