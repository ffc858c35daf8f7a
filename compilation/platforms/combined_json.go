package platforms

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/crytic/tokengas/compilation/types"
	"github.com/pkg/errors"
)

// combinedJSONOutput describes the subset of the `--combined-json` output format which is used by this package. The
// same format is produced by crytic-compile's "solc" export format.
type combinedJSONOutput struct {
	Contracts map[string]combinedJSONContract `json:"contracts"`
	Sources   map[string]combinedJSONSource   `json:"sources"`
}

// combinedJSONContract describes a single contract entry, keyed by "sourcePath:ContractName".
type combinedJSONContract struct {
	// Abi is emitted as a JSON encoded string by older compilers and as a JSON array by newer ones.
	Abi        any    `json:"abi"`
	Bin        string `json:"bin"`
	BinRuntime string `json:"bin-runtime"`
}

// combinedJSONSource describes a single source entry.
type combinedJSONSource struct {
	AST any `json:"AST"`
}

// parseCombinedJSON parses combined JSON compiler output into a Compilation.
func parseCombinedJSON(output []byte) (*types.Compilation, error) {
	var results combinedJSONOutput
	err := json.Unmarshal(output, &results)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse combined json compiler output")
	}

	compilation := types.NewCompilation()
	for sourcePath, source := range results.Sources {
		compilation.Sources[sourcePath] = types.CompiledSource{
			Ast:       source.AST,
			Contracts: make(map[string]types.CompiledContract),
		}
	}

	for name, contract := range results.Contracts {
		// Split our name which should be of form "filename:contractname"
		separator := strings.LastIndex(name, ":")
		if separator == -1 {
			return nil, errors.Errorf("unexpected contract identifier in compiler output: %q", name)
		}
		sourcePath, contractName := name[:separator], name[separator+1:]

		compiledContract := types.CompiledContract{}

		// An empty ABI means the compiler produced no interface for the contract
		if contract.Abi != nil && contract.Abi != "" {
			compiledContract.Abi, err = types.ParseABIFromInterface(contract.Abi)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to parse the interface of contract '%s'", contractName)
			}
		}

		// Contracts with unlinked library placeholders are still recorded, so other contracts of the same output remain
		// usable. Only selecting one of them fails.
		if requiresLinking(contract.Bin) || requiresLinking(contract.BinRuntime) {
			compiledContract.RequiresLinking = true
			compilation.AddContract(sourcePath, contractName, compiledContract)
			continue
		}
		compiledContract.InitBytecode, err = decodeBytecode(contractName, contract.Bin)
		if err != nil {
			return nil, err
		}
		compiledContract.RuntimeBytecode, err = decodeBytecode(contractName, contract.BinRuntime)
		if err != nil {
			return nil, err
		}

		compilation.AddContract(sourcePath, contractName, compiledContract)
	}
	return compilation, nil
}

// requiresLinking reports whether hex encoded bytecode contains `__$<hash>$__` library placeholders.
func requiresLinking(bytecode string) bool {
	return strings.Contains(bytecode, "__")
}

// decodeBytecode decodes hex encoded bytecode.
func decodeBytecode(contractName string, bytecode string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(bytecode, "0x"))
	if err != nil {
		return nil, errors.Errorf("unable to parse bytecode for contract '%s'", contractName)
	}
	return b, nil
}
