package types

import (
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// CompiledContract represents a single contract unit from a smart contract compilation.
type CompiledContract struct {
	// Abi describes a contract's application binary interface, a structure used to describe information needed
	// to interact with the contract such as constructor and function definitions. It is nil if the compiler did not
	// produce an interface for the contract.
	Abi *abi.ABI

	// InitBytecode describes the bytecode used to deploy a contract.
	InitBytecode []byte

	// RuntimeBytecode represents the bytecode to be expected once the contract has been successfully deployed.
	RuntimeBytecode []byte

	// RequiresLinking indicates the compiler output references external libraries which were left unlinked. The
	// bytecode fields are empty in that case.
	RequiresLinking bool
}

// HasBytecode indicates whether the compiler produced deployable bytecode for the contract. Interfaces and abstract
// contracts compile to empty bytecode.
func (c *CompiledContract) HasBytecode() bool {
	return len(c.InitBytecode) > 0
}

// HasInterface indicates whether the compiler produced an ABI for the contract.
func (c *CompiledContract) HasInterface() bool {
	return c.Abi != nil
}

// Metadata extracts the CBOR-encoded metadata which the compiler appended to the runtime bytecode, or nil if there
// is none.
func (c *CompiledContract) Metadata() *ContractMetadata {
	return ExtractContractMetadata(c.RuntimeBytecode)
}

// GetDeploymentMessageData is a helper method used create contract deployment message data for the given contract.
// This data can be set in transaction/message structs "data" field to indicate the packed init bytecode and constructor
// argument data to use.
func (c *CompiledContract) GetDeploymentMessageData(args []any) ([]byte, error) {
	initBytecodeWithArgs := slices.Clone(c.InitBytecode)
	if c.Abi != nil && len(c.Abi.Constructor.Inputs) > 0 {
		data, err := c.Abi.Pack("", args...)
		if err != nil {
			return nil, errors.Errorf("could not encode constructor arguments due to error: %v", err)
		}
		initBytecodeWithArgs = append(initBytecodeWithArgs, data...)
	} else if len(args) > 0 {
		return nil, errors.Errorf("constructor takes no arguments but %d were provided", len(args))
	}
	return initBytecodeWithArgs, nil
}

// ParseABIFromInterface parses a generic object into an abi.ABI and returns it, or an error if one occurs. Compilers
// emit the ABI either as a JSON string or as an already decoded JSON array.
func ParseABIFromInterface(i any) (*abi.ABI, error) {
	var (
		result abi.ABI
		err    error
	)

	if s, ok := i.(string); ok {
		result, err = abi.JSON(strings.NewReader(s))
	} else {
		var b []byte
		b, err = json.Marshal(i)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result, err = abi.JSON(strings.NewReader(string(b)))
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}
