package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// RPCBackend is a Client for an external development node reached over JSON-RPC. Transactions are sent from the
// node's unlocked accounts unless private keys are configured, in which case they are signed locally.
type RPCBackend struct {
	// rpcClient describes the raw JSON-RPC connection, used for methods ethclient does not expose.
	rpcClient *rpc.Client

	// client describes the typed client over rpcClient.
	client *ethclient.Client

	// signer signs transactions locally. It is nil when the node's unlocked accounts are used.
	signer *localSigner

	// accounts restricts the node's unlocked accounts used to send transactions. Empty uses every unlocked account.
	accounts []common.Address

	// logger describes the chain service logger.
	logger *logging.Logger
}

// sendTransactionArgs describes the parameters of eth_sendTransaction.
type sendTransactionArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
	Gas   hexutil.Uint64  `json:"gas"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// DialRPCBackend connects to the node at the configured url. The connection is verified by querying the chain id,
// retrying with exponential backoff as development nodes are often still starting up.
func DialRPCBackend(ctx context.Context, chainConfig *config.ChainConfig, logger *logging.Logger) (*RPCBackend, error) {
	var rpcClient *rpc.Client
	connect := func() error {
		var err error
		rpcClient, err = rpc.DialContext(ctx, chainConfig.RpcUrl)
		if err != nil {
			return err
		}
		if _, err = ethclient.NewClient(rpcClient).ChainID(ctx); err != nil {
			rpcClient.Close()
			return err
		}
		return nil
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.InitialInterval = 250 * time.Millisecond
	err := backoff.Retry(connect, backoff.WithContext(backoff.WithMaxRetries(retryPolicy, chainConfig.ConnectionRetries), ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to %s", chainConfig.RpcUrl)
	}
	backend, err := NewRPCBackend(rpcClient, chainConfig.PrivateKeys, logger)
	if err != nil {
		return nil, err
	}
	accounts, err := chainConfig.GetAccounts()
	if err != nil {
		return nil, err
	}
	backend.UseAccounts(accounts)
	return backend, nil
}

// NewRPCBackend creates an RPCBackend over an established JSON-RPC connection.
func NewRPCBackend(rpcClient *rpc.Client, privateKeys []string, logger *logging.Logger) (*RPCBackend, error) {
	if logger == nil {
		logger = logging.GlobalLogger
	}

	r := &RPCBackend{
		rpcClient: rpcClient,
		client:    ethclient.NewClient(rpcClient),
		logger:    logger.NewSubLogger(logging.SERVICE_KEY, logging.CHAIN_SERVICE),
	}
	if len(privateKeys) > 0 {
		signer, err := newLocalSignerFromHex(privateKeys)
		if err != nil {
			return nil, err
		}
		r.signer = signer
	}
	return r, nil
}

// UseAccounts restricts the node's unlocked accounts transactions are sent from. It has no effect when transactions
// are signed locally.
func (r *RPCBackend) UseAccounts(accounts []common.Address) {
	r.accounts = accounts
}

// Accounts returns the accounts of the configured private keys, the accounts provided to UseAccounts, or the node's
// unlocked accounts.
func (r *RPCBackend) Accounts(ctx context.Context) ([]common.Address, error) {
	if r.signer != nil {
		return r.signer.Accounts(), nil
	}
	if len(r.accounts) > 0 {
		return r.accounts, nil
	}

	var accounts []common.Address
	if err := r.rpcClient.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "could not list the node's accounts")
	}
	return accounts, nil
}

// EstimateGas estimates the gas needed to execute the provided message against the latest block.
func (r *RPCBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return r.client.EstimateGas(ctx, msg)
}

// SendTransaction submits a transaction, signing it locally when private keys are configured.
func (r *RPCBackend) SendTransaction(ctx context.Context, request TransactionRequest) (common.Hash, error) {
	if r.signer != nil {
		return r.signer.sendTransaction(ctx, r.client, request, nil)
	}

	args := sendTransactionArgs{
		From: request.From,
		To:   request.To,
		Data: request.Data,
		Gas:  hexutil.Uint64(request.Gas),
	}
	if request.Value != nil {
		args.Value = (*hexutil.Big)(new(big.Int).Set(request.Value))
	}

	var txHash common.Hash
	if err := r.rpcClient.CallContext(ctx, &txHash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	r.logger.Trace("Submitted transaction ", txHash.Hex(), " from ", request.From.Hex())
	return txHash, nil
}

// TransactionReceipt returns the receipt of a mined transaction, or ethereum.NotFound while it is pending.
func (r *RPCBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error) {
	return r.client.TransactionReceipt(ctx, txHash)
}

// Close closes the JSON-RPC connection.
func (r *RPCBackend) Close() error {
	r.client.Close()
	return nil
}
