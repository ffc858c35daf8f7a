package types

import (
	"path/filepath"
	"sort"
	"strings"
)

// Compilation represents the artifacts of a smart contract compilation.
type Compilation struct {
	// Sources describes the CompiledSource objects provided in a compilation, housing information regarding source
	// files, ASTs, and contracts.
	Sources map[string]CompiledSource
}

// NewCompilation returns a new, empty Compilation object.
func NewCompilation() *Compilation {
	return &Compilation{
		Sources: make(map[string]CompiledSource),
	}
}

// AddContract records a compiled contract under the provided source path, creating the source entry if needed.
func (c *Compilation) AddContract(sourcePath string, contractName string, contract CompiledContract) {
	source, ok := c.Sources[sourcePath]
	if !ok {
		source = CompiledSource{Contracts: make(map[string]CompiledContract)}
	}
	source.Contracts[contractName] = contract
	c.Sources[sourcePath] = source
}

// FindContract looks up the contract with the given name which was compiled from the given source path. Compilers
// report source paths relative to their working or base directory, so a source matches when the cleaned paths are
// equal or one ends with the other. Returns the contract and a boolean indicating whether it was found.
func (c *Compilation) FindContract(sourcePath string, contractName string) (*CompiledContract, bool) {
	// Iterate source paths in a stable order so that ambiguous matches resolve deterministically
	sourcePaths := make([]string, 0, len(c.Sources))
	for p := range c.Sources {
		sourcePaths = append(sourcePaths, p)
	}
	sort.Strings(sourcePaths)

	for _, p := range sourcePaths {
		if !sourcePathsMatch(p, sourcePath) {
			continue
		}
		if contract, ok := c.Sources[p].Contracts[contractName]; ok {
			return &contract, true
		}
	}
	return nil, false
}

// sourcePathsMatch determines whether two source paths refer to the same file.
func sourcePathsMatch(a string, b string) bool {
	a = filepath.ToSlash(filepath.Clean(a))
	b = filepath.ToSlash(filepath.Clean(b))
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "/"+strings.TrimPrefix(b, "./")) || strings.HasSuffix(b, "/"+strings.TrimPrefix(a, "./"))
}

// FindContractInCompilations searches each compilation for the given contract, returning the first match.
func FindContractInCompilations(compilations []Compilation, sourcePath string, contractName string) (*CompiledContract, bool) {
	for i := range compilations {
		if contract, ok := compilations[i].FindContract(sourcePath, contractName); ok {
			return contract, true
		}
	}
	return nil, false
}
