package profiling

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crytic/tokengas/chain"
	chainConfig "github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/compilation/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stopContractInitCode deploys a contract whose runtime code is a single STOP instruction, so every call to it
// succeeds regardless of the method called.
var stopContractInitCode = hexutil.MustDecode("0x6001600c60003960016000f300")

// erc20TestAbi declares the ERC20 methods along with the constructor of the EIP20 fixture.
const erc20TestAbi = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[
		{"name":"_initialAmount","type":"uint256"},{"name":"_tokenName","type":"string"},
		{"name":"_decimalUnits","type":"uint8"},{"name":"_tokenSymbol","type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"_owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"_from","type":"address"},{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"_from","type":"address","indexed":true},{"name":"_to","type":"address","indexed":true},{"name":"_value","type":"uint256","indexed":false}]},
	{"type":"error","name":"InsufficientBalance","inputs":[{"name":"available","type":"uint256"}]}
]`

// erc721TestAbi declares the ERC721 standard methods and totalSupply, without transfer and allowance.
const erc721TestAbi = `[
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getApproved","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[{"name":"operator","type":"address"},{"name":"approved","type":"bool"}],"outputs":[]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]}
]`

// erc20Operations lists the operations of an ERC20 report in completion order.
var erc20Operations = []string{"deployment", "totalSupply", "balanceOf", "transfer", "approve", "allowance", "transferFrom"}

// mustParseAbi parses an ABI definition or fails the test.
func mustParseAbi(t *testing.T, definition string) *abi.ABI {
	contractAbi, err := abi.JSON(strings.NewReader(definition))
	require.NoError(t, err)
	return &contractAbi
}

// fakeCompiler returns fixed compilations, or a fixed error.
type fakeCompiler struct {
	compilations []types.Compilation
	err          error
}

func (f *fakeCompiler) CompileSource(sourcePath string) ([]types.Compilation, error) {
	return f.compilations, f.err
}

// newFakeCompiler creates a compiler which compiles the named contract at sourcePath to the provided artifact.
func newFakeCompiler(sourcePath string, contractName string, contract types.CompiledContract) *fakeCompiler {
	compilation := types.NewCompilation()
	compilation.AddContract(sourcePath, contractName, contract)
	return &fakeCompiler{compilations: []types.Compilation{*compilation}}
}

// fakeClient is a chain.Client whose behavior is scripted by the test. Transactions are never executed.
type fakeClient struct {
	accounts    []common.Address
	estimate    uint64
	estimateErr error
	sendErr     error
	gasUsed     uint64
	status      uint64

	// pendingPolls describes how many polls report a receipt as pending before it is returned.
	pendingPolls int

	// receiptErr is returned when polling for a receipt, if set.
	receiptErr error

	// replayErr is returned by estimations made after a transaction was sent, if set.
	replayErr error

	lock  sync.Mutex
	sent  []chain.TransactionRequest
	polls int
}

// newFakeClient creates a fakeClient where every transaction succeeds.
func newFakeClient() *fakeClient {
	return &fakeClient{
		accounts: []common.Address{common.HexToAddress("0x1000"), common.HexToAddress("0x2000")},
		estimate: 30_000,
		gasUsed:  25_000,
		status:   coreTypes.ReceiptStatusSuccessful,
	}
}

func (f *fakeClient) Accounts(ctx context.Context) ([]common.Address, error) {
	return f.accounts, nil
}

func (f *fakeClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.replayErr != nil && len(f.sent) > 0 {
		return 0, f.replayErr
	}
	return f.estimate, f.estimateErr
}

func (f *fakeClient) SendTransaction(ctx context.Context, request chain.TransactionRequest) (common.Hash, error) {
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, request)
	return common.BigToHash(common.Big1), nil
}

func (f *fakeClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	f.polls++
	if f.polls <= f.pendingPolls {
		return nil, ethereum.NotFound
	}
	return &coreTypes.Receipt{
		Status:          f.status,
		GasUsed:         f.gasUsed,
		TxHash:          txHash,
		ContractAddress: common.HexToAddress("0xc0ffee"),
	}, nil
}

func (f *fakeClient) Close() error {
	return nil
}

// fastPipelineOptions returns pipeline options which poll quickly and give up after a short timeout.
func fastPipelineOptions() PipelineOptions {
	opts := DefaultPipelineOptions()
	opts.Polling = PollingConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		Multiplier:      2,
		Timeout:         500 * time.Millisecond,
	}
	return opts
}

// newTestChain creates a simulated chain with the provided number of accounts and closes it when the test ends.
func newTestChain(t *testing.T, accountCount int) *chain.SimulatedBackend {
	config := chainConfig.DefaultChainConfig()
	config.AccountCount = accountCount
	backend, err := chain.NewSimulatedBackend(config, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, backend.Close()) })
	return backend
}
