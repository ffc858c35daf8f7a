package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
)

// TransactionRequest describes a transaction to submit on behalf of one of the client's accounts.
type TransactionRequest struct {
	// From describes the sending account. It must be one of the accounts returned by Client.Accounts.
	From common.Address

	// To describes the recipient, or nil for a contract deployment.
	To *common.Address

	// Data describes the call data or, for deployments, the init bytecode with encoded constructor arguments.
	Data []byte

	// Gas describes the gas limit of the transaction.
	Gas uint64

	// Value describes the amount of wei sent along with the transaction. A nil value sends nothing.
	Value *big.Int
}

// Client describes the network client used to submit transactions to a test network and query its state.
type Client interface {
	// Accounts returns the accounts transactions can be sent from, in a stable order.
	Accounts(ctx context.Context) ([]common.Address, error)

	// EstimateGas estimates the gas needed to execute the provided message against the latest state.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// SendTransaction submits a transaction and returns its hash without waiting for it to be mined.
	SendTransaction(ctx context.Context, request TransactionRequest) (common.Hash, error)

	// TransactionReceipt returns the receipt of a mined transaction, or ethereum.NotFound while it is pending.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error)

	// Close releases the resources held by the client.
	Close() error
}
