package chain

import (
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ContractInstance describes a contract deployed at an address, along with the interface used to call it.
type ContractInstance struct {
	// Name describes the name of the contract.
	Name string

	// Address describes where the contract was deployed.
	Address common.Address

	// Abi describes the contract's interface.
	Abi *abi.ABI
}

// NewContractInstance creates a ContractInstance for the contract deployed at the given address.
func NewContractInstance(name string, address common.Address, contractAbi *abi.ABI) *ContractInstance {
	return &ContractInstance{
		Name:    name,
		Address: address,
		Abi:     contractAbi,
	}
}

// methodKeys returns the keys of the ABI's methods in sorted order. go-ethereum suffixes overloaded methods with an
// index (safeTransferFrom, safeTransferFrom0, ...), so RawName must be used to look them up by their Solidity name.
func (c *ContractInstance) methodKeys() []string {
	if c.Abi == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Abi.Methods))
	for key := range c.Abi.Methods {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasMethod indicates whether the contract declares a method with the given name, under any overload.
func (c *ContractInstance) HasMethod(name string) bool {
	return slices.ContainsFunc(c.methodKeys(), func(key string) bool {
		return c.Abi.Methods[key].RawName == name
	})
}

// ResolveMethod finds the overload of the named method which accepts argCount arguments.
func (c *ContractInstance) ResolveMethod(name string, argCount int) (*abi.Method, error) {
	for _, key := range c.methodKeys() {
		method := c.Abi.Methods[key]
		if method.RawName == name && len(method.Inputs) == argCount {
			return &method, nil
		}
	}
	if c.HasMethod(name) {
		return nil, errors.Errorf("contract %s has no overload of %s accepting %d arguments", c.Name, name, argCount)
	}
	return nil, errors.Errorf("contract %s has no method %s", c.Name, name)
}

// Pack encodes a call to the provided method with the given arguments.
func (c *ContractInstance) Pack(method *abi.Method, args ...any) ([]byte, error) {
	encodedArgs, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not encode arguments of %s", method.Sig)
	}
	return append(slices.Clone(method.ID), encodedArgs...), nil
}
