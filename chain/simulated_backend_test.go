package chain

import (
	"context"
	"testing"
	"time"

	"github.com/crytic/tokengas/chain/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stopContractInitCode deploys a contract whose runtime code is a single STOP instruction.
var stopContractInitCode = hexutil.MustDecode("0x6001600c60003960016000f300")

// newTestSimulatedBackend creates a simulated chain with the provided block period and closes it when the test ends.
func newTestSimulatedBackend(t *testing.T, blockPeriodMilliseconds int) *SimulatedBackend {
	chainConfig := config.DefaultChainConfig()
	chainConfig.AccountCount = 4
	chainConfig.BlockPeriodMilliseconds = blockPeriodMilliseconds

	backend, err := NewSimulatedBackend(chainConfig, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, backend.Close()) })
	return backend
}

// waitForReceipt polls for a receipt until it is mined or the timeout expires.
func waitForReceipt(t *testing.T, client Client, txHash common.Hash) *coreTypes.Receipt {
	var receipt *coreTypes.Receipt
	require.Eventually(t, func() bool {
		var err error
		receipt, err = client.TransactionReceipt(context.Background(), txHash)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	return receipt
}

// TestSimulatedBackendAccounts ensures accounts are derived deterministically and funded at genesis.
func TestSimulatedBackendAccounts(t *testing.T) {
	backend := newTestSimulatedBackend(t, 0)

	accounts, err := backend.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	assert.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), accounts[0])

	balance, err := backend.client.BalanceAt(context.Background(), accounts[3], nil)
	require.NoError(t, err)
	expected, err := config.DefaultChainConfig().GetInitialBalance()
	require.NoError(t, err)
	assert.Equal(t, expected, balance)
}

// TestSimulatedBackendDeployAndCall deploys a contract and calls it, ensuring transactions are mined as they are
// submitted when no block period is configured.
func TestSimulatedBackendDeployAndCall(t *testing.T) {
	backend := newTestSimulatedBackend(t, 0)
	ctx := context.Background()

	var committed []common.Hash
	backend.Events.BlockCommitted.Subscribe(func(event BlockCommittedEvent) error {
		committed = append(committed, event.BlockHash)
		return nil
	})

	accounts, err := backend.Accounts(ctx)
	require.NoError(t, err)

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: accounts[0], Data: stopContractInitCode})
	require.NoError(t, err)
	assert.Greater(t, gas, uint64(53000))

	txHash, err := backend.SendTransaction(ctx, TransactionRequest{From: accounts[0], Data: stopContractInitCode, Gas: gas * 2})
	require.NoError(t, err)
	receipt, err := backend.TransactionReceipt(ctx, txHash)
	require.NoError(t, err)
	assert.Equal(t, coreTypes.ReceiptStatusSuccessful, receipt.Status)
	assert.NotEqual(t, common.Address{}, receipt.ContractAddress)
	assert.LessOrEqual(t, receipt.GasUsed, gas)
	assert.Len(t, committed, 1)

	// Calls from a second sender use its own nonce
	txHash, err = backend.SendTransaction(ctx, TransactionRequest{From: accounts[1], To: &receipt.ContractAddress, Data: []byte{0x01}})
	require.NoError(t, err)
	receipt, err = backend.TransactionReceipt(ctx, txHash)
	require.NoError(t, err)
	assert.Equal(t, coreTypes.ReceiptStatusSuccessful, receipt.Status)
	assert.Len(t, committed, 2)

	// Unknown senders are rejected
	_, err = backend.SendTransaction(ctx, TransactionRequest{From: common.HexToAddress("0x1234"), Data: stopContractInitCode})
	assert.Error(t, err)
}

// TestSimulatedBackendBlockPeriod ensures transactions stay pending until the block producer commits them.
func TestSimulatedBackendBlockPeriod(t *testing.T) {
	backend := newTestSimulatedBackend(t, 500)
	ctx := context.Background()

	accounts, err := backend.Accounts(ctx)
	require.NoError(t, err)

	txHash, err := backend.SendTransaction(ctx, TransactionRequest{From: accounts[0], Data: stopContractInitCode, Gas: 100_000})
	require.NoError(t, err)

	_, err = backend.TransactionReceipt(ctx, txHash)
	assert.ErrorIs(t, err, ethereum.NotFound)

	receipt := waitForReceipt(t, backend, txHash)
	assert.Equal(t, coreTypes.ReceiptStatusSuccessful, receipt.Status)
}

// TestNewClient ensures the configured backend is created and invalid configurations are rejected.
func TestNewClient(t *testing.T) {
	chainConfig := config.DefaultChainConfig()
	client, err := NewClient(context.Background(), chainConfig, nil)
	require.NoError(t, err)
	assert.IsType(t, &SimulatedBackend{}, client)
	require.NoError(t, client.Close())

	chainConfig.Backend = "ganache"
	client, err = NewClient(context.Background(), chainConfig, nil)
	assert.Error(t, err)
	assert.Nil(t, client)
}
