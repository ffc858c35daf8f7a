package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/eth/ethconfig"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/node"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// SimulatedBackend is a Client backed by an in-process go-ethereum simulated chain whose accounts are funded at
// genesis.
type SimulatedBackend struct {
	// backend describes the underlying simulated chain.
	backend *simulated.Backend

	// client describes the RPC client connected to the simulated chain.
	client simulated.Client

	// signer holds the keys of the funded accounts.
	signer *localSigner

	// blockPeriod describes the interval at which blocks are committed. Zero commits a block for every transaction.
	blockPeriod time.Duration

	// commitLock serializes block commits between senders and the block producer.
	commitLock sync.Mutex

	// stop is closed to stop the block producer.
	stop chan struct{}

	// producerWg tracks the block producer goroutine.
	producerWg sync.WaitGroup

	// closeOnce ensures the chain is only closed once.
	closeOnce sync.Once

	// logger describes the chain service logger.
	logger *logging.Logger

	// Events defines the event system for the SimulatedBackend.
	Events SimulatedBackendEvents
}

// NewSimulatedBackend creates a simulated chain from the provided configuration. Accounts are derived from the
// configured private keys or, if none are configured, generated deterministically.
func NewSimulatedBackend(chainConfig *config.ChainConfig, logger *logging.Logger) (*SimulatedBackend, error) {
	if logger == nil {
		logger = logging.GlobalLogger
	}
	logger = logger.NewSubLogger(logging.SERVICE_KEY, logging.CHAIN_SERVICE)

	balance, err := chainConfig.GetInitialBalance()
	if err != nil {
		return nil, err
	}

	var signer *localSigner
	if len(chainConfig.PrivateKeys) > 0 {
		signer, err = newLocalSignerFromHex(chainConfig.PrivateKeys)
	} else {
		signer, err = generateSigner(chainConfig.AccountCount)
	}
	if err != nil {
		return nil, err
	}

	genesisAlloc := make(coreTypes.GenesisAlloc, len(signer.accounts))
	for _, account := range signer.accounts {
		genesisAlloc[account] = coreTypes.Account{Balance: new(big.Int).Set(balance)}
	}

	var options []func(nodeConf *node.Config, ethConf *ethconfig.Config)
	if chainConfig.BlockGasLimit > 0 {
		options = append(options, simulated.WithBlockGasLimit(chainConfig.BlockGasLimit))
	}

	// The genesis allocation is cloned as the simulated chain takes ownership of it
	backend := simulated.NewBackend(maps.Clone(genesisAlloc), options...)
	s := &SimulatedBackend{
		backend:     backend,
		client:      backend.Client(),
		signer:      signer,
		blockPeriod: chainConfig.BlockPeriod(),
		stop:        make(chan struct{}),
		logger:      logger,
	}

	if s.blockPeriod > 0 {
		s.producerWg.Add(1)
		go s.produceBlocks()
	}

	logger.Debug("Started simulated chain with ", len(signer.accounts), " funded accounts", logging.StructuredLogInfo{
		"blockPeriod": s.blockPeriod.String(),
	})
	return s, nil
}

// generateSigner derives count private keys from the integers 1 through count.
func generateSigner(count int) (*localSigner, error) {
	keys := make([]*ecdsa.PrivateKey, count)
	for i := range keys {
		key, err := utils.GetPrivateKey(big.NewInt(int64(i + 1)).Bytes())
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return newLocalSigner(keys), nil
}

// produceBlocks commits a block every block period until the chain is closed.
func (s *SimulatedBackend) produceBlocks() {
	defer s.producerWg.Done()

	ticker := time.NewTicker(s.blockPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Commit()
		}
	}
}

// Commit mines the pending transactions into a new block.
func (s *SimulatedBackend) Commit() common.Hash {
	s.commitLock.Lock()
	blockHash := s.backend.Commit()
	s.commitLock.Unlock()

	if err := s.Events.BlockCommitted.Publish(BlockCommittedEvent{Backend: s, BlockHash: blockHash}); err != nil {
		s.logger.Warn("Block committed event handler failed", err)
	}
	return blockHash
}

// Accounts returns the funded accounts of the simulated chain.
func (s *SimulatedBackend) Accounts(ctx context.Context) ([]common.Address, error) {
	return s.signer.Accounts(), nil
}

// EstimateGas estimates the gas needed to execute the provided message against the latest block.
func (s *SimulatedBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return s.client.EstimateGas(ctx, msg)
}

// SendTransaction signs and submits a transaction. Without a block period, a block is committed immediately so the
// transaction is mined before this returns.
func (s *SimulatedBackend) SendTransaction(ctx context.Context, request TransactionRequest) (common.Hash, error) {
	var afterSend func()
	if s.blockPeriod == 0 {
		afterSend = func() { s.Commit() }
	}
	return s.signer.sendTransaction(ctx, s.client, request, afterSend)
}

// TransactionReceipt returns the receipt of a mined transaction, or ethereum.NotFound while it is pending.
func (s *SimulatedBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error) {
	return s.client.TransactionReceipt(ctx, txHash)
}

// Close stops block production and shuts down the simulated chain.
func (s *SimulatedBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.producerWg.Wait()
		err = errors.WithStack(s.backend.Close())
	})
	return err
}
