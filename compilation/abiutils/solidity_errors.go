package abiutils

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// An enum is defined below providing all `Panic(uint)` error codes returned in return data when the VM encounters
// an error in some cases.
// Reference: https://docs.soliditylang.org/en/latest/control-structures.html#panic-via-assert-and-error-via-require
const (
	PanicCodeCompilerInserted              = 0x00
	PanicCodeAssertFailed                  = 0x01
	PanicCodeArithmeticUnderOverflow       = 0x11
	PanicCodeDivideByZero                  = 0x12
	PanicCodeEnumTypeConversionOutOfBounds = 0x21
	PanicCodeIncorrectStorageAccess        = 0x22
	PanicCodePopEmptyArray                 = 0x31
	PanicCodeOutOfBoundsArrayAccess        = 0x32
	PanicCodeAllocateTooMuchMemory         = 0x41
	PanicCodeCallUninitializedVariable     = 0x51
)

var (
	// panicReturnDataAbi describes the `Panic(uint256)` error emitted by the Solidity compiler.
	panicReturnDataAbi = newErrorMethod("Panic", "uint256")

	// errorReturnDataAbi describes the `Error(string)` error emitted by `require` and `revert` statements.
	errorReturnDataAbi = newErrorMethod("Error", "string")
)

// newErrorMethod creates a method definition for a builtin Solidity error with a single input of the given type.
func newErrorMethod(name string, inputType string) abi.Method {
	t, _ := abi.NewType(inputType, "", nil)
	return abi.NewMethod(name, name, abi.Function, "", false, false, []abi.Argument{
		{Name: "", Type: t, Indexed: false},
	}, abi.Arguments{})
}

// GetRevertData obtains the return data attached to a reverted call error. JSON-RPC servers attach it as a hex
// string to the error's data field. Returns nil if the error carries no revert data.
func GetRevertData(err error) []byte {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return nil
	}
	data, decodeErr := hexutil.Decode(hexData)
	if decodeErr != nil {
		return nil
	}
	return data
}

// GetSolidityPanicCode obtains a panic code from revert return data, if possible. If the return data is not
// representative of a Panic, then nil is returned.
func GetSolidityPanicCode(returnData []byte) *big.Int {
	// The return data must fit exactly the selector + uint256
	if len(returnData) == 4+32 && bytes.Equal(returnData[:4], panicReturnDataAbi.ID) {
		values, err := panicReturnDataAbi.Inputs.Unpack(returnData[4:])
		if err == nil && len(values) > 0 {
			return values[0].(*big.Int)
		}
	}
	return nil
}

// GetSolidityRevertErrorString obtains an error message from revert return data, if possible. If the return data is
// not representative of an Error, then nil is returned.
func GetSolidityRevertErrorString(returnData []byte) *string {
	if len(returnData) > 4 && bytes.Equal(returnData[:4], errorReturnDataAbi.ID) {
		values, err := errorReturnDataAbi.Inputs.Unpack(returnData[4:])
		if err == nil && len(values) > 0 {
			errorMessage := values[0].(string)
			return &errorMessage
		}
	}
	return nil
}

// GetSolidityCustomRevertError obtains a custom Solidity error returned, if one was and could be resolved.
// Returns the ABI error definition as well as its unpacked values. Or returns nil outputs if a custom error was not
// emitted, or could not be resolved.
func GetSolidityCustomRevertError(contractAbi *abi.ABI, returnData []byte) (*abi.Error, []any) {
	if contractAbi == nil || len(returnData) < 4 {
		return nil, nil
	}

	for _, abiError := range contractAbi.Errors {
		if bytes.Equal(abiError.ID.Bytes()[:4], returnData[:4]) {
			matchedCustomError := abiError
			unpackedCustomErrorArgs, err := matchedCustomError.Inputs.Unpack(returnData[4:])
			if err == nil {
				return &matchedCustomError, unpackedCustomErrorArgs
			}
		}
	}
	return nil, nil
}

// GetPanicReason will take in a panic code as an uint64 and will return the string reason behind that panic code. For
// example, if panic code is PanicCodeAssertFailed, then "assertion failure" is returned.
func GetPanicReason(panicCode uint64) string {
	switch panicCode {
	case PanicCodeCompilerInserted:
		return "panic: compiler inserted panic"
	case PanicCodeAssertFailed:
		return "panic: assertion failed"
	case PanicCodeArithmeticUnderOverflow:
		return "panic: arithmetic underflow"
	case PanicCodeDivideByZero:
		return "panic: division by zero"
	case PanicCodeEnumTypeConversionOutOfBounds:
		return "panic: enum access out of bounds"
	case PanicCodeIncorrectStorageAccess:
		return "panic: incorrect storage access"
	case PanicCodePopEmptyArray:
		return "panic: pop on empty array"
	case PanicCodeOutOfBoundsArrayAccess:
		return "panic: out of bounds array access"
	case PanicCodeAllocateTooMuchMemory:
		return "panic: overallocation of memory"
	case PanicCodeCallUninitializedVariable:
		return "panic: call on uninitialized variable"
	default:
		return fmt.Sprintf("unknown panic code(%v)", panicCode)
	}
}

// DecodeRevertReason produces a human-readable reason for a reverted call from its revert data, resolving builtin
// errors first and custom errors from the provided ABI second. Returns an empty string if no reason could be decoded.
func DecodeRevertReason(contractAbi *abi.ABI, returnData []byte) string {
	if message := GetSolidityRevertErrorString(returnData); message != nil {
		return *message
	}
	if panicCode := GetSolidityPanicCode(returnData); panicCode != nil {
		return GetPanicReason(panicCode.Uint64())
	}
	if customError, values := GetSolidityCustomRevertError(contractAbi, returnData); customError != nil {
		args := make([]string, len(values))
		for i, value := range values {
			args[i] = fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("%s(%s)", customError.Name, strings.Join(args, ", "))
	}
	return ""
}
