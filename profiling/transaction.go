package profiling

import (
	"context"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/compilation/abiutils"
	"github.com/crytic/tokengas/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// errTransactionReverted describes a transaction which was mined with a failed status.
var errTransactionReverted = errors.New("transaction reverted")

// operationTransaction describes a single measured transaction of a pipeline.
type operationTransaction struct {
	// operation names the measured operation.
	operation string

	// from describes the sender.
	from common.Address

	// to describes the called contract, or nil for a deployment.
	to *common.Address

	// data describes the transaction data.
	data []byte

	// contractAbi is used to decode revert reasons and event logs.
	contractAbi *abi.ABI
}

// executeTransaction estimates gas for the transaction, submits it with a gas limit of the estimate times the
// configured multiplier and awaits its receipt. Returns the receipt and the gas limit used.
func executeTransaction(ctx context.Context, client chain.Client, opts PipelineOptions, tx operationTransaction) (*coreTypes.Receipt, uint64, error) {
	logger := opts.logger()

	msg := ethereum.CallMsg{From: tx.from, To: tx.to, Data: tx.data}
	estimate, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, 0, &GasEstimationError{
			Operation:    tx.operation,
			RevertReason: abiutils.DecodeRevertReason(tx.contractAbi, abiutils.GetRevertData(err)),
			Err:          err,
		}
	}

	gasLimit := opts.gasLimit(estimate)
	txHash, err := client.SendTransaction(ctx, chain.TransactionRequest{
		From: tx.from,
		To:   tx.to,
		Data: tx.data,
		Gas:  gasLimit,
	})
	if err != nil {
		return nil, 0, &SubmissionError{Operation: tx.operation, Err: err}
	}
	logger.Trace("Submitted ", tx.operation, logging.StructuredLogInfo{
		"txHash":   txHash.Hex(),
		"estimate": estimate,
		"gasLimit": gasLimit,
	})

	receipt, err := AwaitReceipt(ctx, client, txHash, opts.Polling)
	if err != nil {
		return nil, 0, err
	}
	if receipt.Status == coreTypes.ReceiptStatusFailed {
		return nil, 0, &SubmissionError{
			Operation:    tx.operation,
			TxHash:       txHash,
			RevertReason: replayRevertReason(ctx, client, msg, tx.contractAbi),
			Err:          errTransactionReverted,
		}
	}

	for _, eventLog := range receipt.Logs {
		if formatted := abiutils.FormatEventLog(tx.contractAbi, eventLog); formatted != "" {
			logger.Trace(tx.operation, " emitted ", formatted)
		}
	}
	return receipt, gasLimit, nil
}

// replayRevertReason estimates the reverted call again against the latest state to recover its revert data, since
// receipts do not carry it. Returns an empty string if the replay succeeds or the reason cannot be decoded.
func replayRevertReason(ctx context.Context, client chain.Client, msg ethereum.CallMsg, contractAbi *abi.ABI) string {
	_, err := client.EstimateGas(ctx, msg)
	if err == nil {
		return ""
	}
	return abiutils.DecodeRevertReason(contractAbi, abiutils.GetRevertData(err))
}
