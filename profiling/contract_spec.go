package profiling

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ContractSpec identifies a contract to profile and the arguments to deploy it with.
type ContractSpec struct {
	// SourcePath describes the source file which declares the contract.
	SourcePath string

	// Selector identifies the contract within its source file, in the form "path:ContractName".
	Selector string

	// ConstructorArgs describes the constructor arguments. They are coerced to the constructor's parameter types
	// when the contract is deployed.
	ConstructorArgs []string
}

// ParseContractSpec parses a contract spec of the form "path:ContractName,arg1,arg2,...". The text before the first
// comma is the selector, the part of the selector before its first colon is the source path, and the remaining comma
// separated fields are the constructor arguments.
func ParseContractSpec(s string) (ContractSpec, error) {
	fields := strings.Split(s, ",")
	selector := strings.TrimSpace(fields[0])
	if selector == "" {
		return ContractSpec{}, errors.Errorf("invalid contract spec %q: a source path is required", s)
	}

	sourcePath, _, _ := strings.Cut(selector, ":")
	return ContractSpec{
		SourcePath:      sourcePath,
		Selector:        selector,
		ConstructorArgs: fields[1:],
	}, nil
}

// ParseContractSpecs parses each of the provided contract specs, stopping at the first invalid one.
func ParseContractSpecs(specs []string) ([]ContractSpec, error) {
	parsed := make([]ContractSpec, 0, len(specs))
	for _, s := range specs {
		spec, err := ParseContractSpec(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, spec)
	}
	return parsed, nil
}

// ContractName returns the name of the contract the selector refers to: the text after its last colon. Selectors
// without a colon refer to the contract named after the source file.
func (c ContractSpec) ContractName() string {
	if i := strings.LastIndex(c.Selector, ":"); i >= 0 {
		return c.Selector[i+1:]
	}
	base := filepath.Base(c.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// String returns the selector of the contract.
func (c ContractSpec) String() string {
	return c.Selector
}
