package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CompilationError indicates a contract could not be obtained from the compiler: either compilation failed or the
// selected contract is absent from the output.
type CompilationError struct {
	// Selector describes the contract which was requested.
	Selector string

	// SourcePath describes the compiled source file.
	SourcePath string

	// Err describes the compiler failure, or nil if compilation succeeded but the contract was not found.
	Err error
}

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to compile %s: %v", e.SourcePath, e.Err)
	}
	return fmt.Sprintf("contract not found: %s at %s", e.Selector, e.SourcePath)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// MissingBytecodeError indicates compilation did not produce deployable bytecode, as is the case for interfaces,
// abstract contracts and contracts whose library references were left unlinked.
type MissingBytecodeError struct {
	Selector string

	// RequiresLinking indicates the bytecode is missing because the contract references unlinked libraries.
	RequiresLinking bool
}

func (e *MissingBytecodeError) Error() string {
	if e.RequiresLinking {
		return fmt.Sprintf("contract %s requires library linking, which is not supported", e.Selector)
	}
	return fmt.Sprintf("compilation of contract %s did not produce any bytecode", e.Selector)
}

// MissingInterfaceError indicates compilation did not produce an ABI for the contract.
type MissingInterfaceError struct {
	Selector string
}

func (e *MissingInterfaceError) Error() string {
	return fmt.Sprintf("compilation of contract %s did not produce an interface", e.Selector)
}

// MissingMethodError indicates a required method is not declared by the contract's interface.
type MissingMethodError struct {
	Operation string
	Err       error
}

func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("cannot call %s: %v", e.Operation, e.Err)
}

func (e *MissingMethodError) Unwrap() error {
	return e.Err
}

// ArgumentError indicates the arguments of an operation could not be converted to the types its ABI declares.
type ArgumentError struct {
	Operation string
	Err       error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Operation, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// GasEstimationError indicates the network rejected or could not estimate gas for an operation.
type GasEstimationError struct {
	Operation string

	// RevertReason describes the decoded revert reason, if the estimation failed because the call reverted.
	RevertReason string

	Err error
}

func (e *GasEstimationError) Error() string {
	if e.RevertReason != "" {
		return fmt.Sprintf("gas estimation failed for %s: %v (%s)", e.Operation, e.Err, e.RevertReason)
	}
	return fmt.Sprintf("gas estimation failed for %s: %v", e.Operation, e.Err)
}

func (e *GasEstimationError) Unwrap() error {
	return e.Err
}

// SubmissionError indicates a transaction was rejected by the network, or was mined but reverted.
type SubmissionError struct {
	Operation string

	// TxHash describes the submitted transaction, or the zero hash if submission itself failed.
	TxHash common.Hash

	// RevertReason describes the decoded revert reason of a mined transaction which reverted, if it could be recovered.
	RevertReason string

	Err error
}

func (e *SubmissionError) Error() string {
	if e.TxHash != (common.Hash{}) && e.RevertReason != "" {
		return fmt.Sprintf("transaction %s for %s failed: %v (%s)", e.TxHash.Hex(), e.Operation, e.Err, e.RevertReason)
	}
	if e.TxHash != (common.Hash{}) {
		return fmt.Sprintf("transaction %s for %s failed: %v", e.TxHash.Hex(), e.Operation, e.Err)
	}
	return fmt.Sprintf("could not submit transaction for %s: %v", e.Operation, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ReceiptError indicates the client failed while polling for a receipt.
type ReceiptError struct {
	TxHash common.Hash
	Err    error
}

func (e *ReceiptError) Error() string {
	return fmt.Sprintf("could not fetch the receipt of transaction %s: %v", e.TxHash.Hex(), e.Err)
}

func (e *ReceiptError) Unwrap() error {
	return e.Err
}

// MalformedReceiptError indicates a receipt was returned but cannot be used as the final state of a transaction.
type MalformedReceiptError struct {
	TxHash common.Hash
	Reason string
}

func (e *MalformedReceiptError) Error() string {
	return fmt.Sprintf("malformed receipt for transaction %s: %s", e.TxHash.Hex(), e.Reason)
}

// ReceiptTimeoutError indicates a transaction was not mined within the polling timeout.
type ReceiptTimeoutError struct {
	TxHash  common.Hash
	Timeout time.Duration
}

func (e *ReceiptTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s was not mined within %v", e.TxHash.Hex(), e.Timeout)
}

// DuplicateOperationError indicates an operation was recorded twice in a GasReport.
type DuplicateOperationError struct {
	Operation string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("operation %s was already recorded", e.Operation)
}

// UnsupportedContractTypeError indicates no step list is registered for the requested contract type.
type UnsupportedContractTypeError struct {
	ContractType string
	Supported    []string
}

func (e *UnsupportedContractTypeError) Error() string {
	return fmt.Sprintf("invalid contract type: %s (choose from %s)", e.ContractType, strings.Join(e.Supported, ", "))
}

// InsufficientAccountsError indicates the chain does not provide enough accounts for the requested pipelines.
type InsufficientAccountsError struct {
	Required  int
	Available int
}

func (e *InsufficientAccountsError) Error() string {
	return fmt.Sprintf("profiling requires %d accounts but only %d are available", e.Required, e.Available)
}
