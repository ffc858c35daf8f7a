package config

import (
	"math/big"
	"time"

	"github.com/crytic/tokengas/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// SimulatedBackend identifies the in-process simulated chain.
	SimulatedBackend = "simulated"
	// RPCBackend identifies an external development node reached over JSON-RPC.
	RPCBackend = "rpc"
)

// ChainConfig describes the test network the profiler deploys contracts to.
type ChainConfig struct {
	// Backend is either SimulatedBackend or RPCBackend.
	Backend string `json:"backend"`

	// RpcUrl describes the JSON-RPC endpoint of the development node used by the RPCBackend.
	RpcUrl string `json:"rpcUrl"`

	// AccountCount describes how many funded accounts the SimulatedBackend generates when no PrivateKeys are given.
	AccountCount int `json:"accountCount"`

	// InitialBalance describes the balance in wei of every simulated account. Exponent notation is accepted.
	InitialBalance string `json:"initialBalance"`

	// BlockPeriodMilliseconds describes the period at which the SimulatedBackend produces blocks. Zero produces a
	// block for every submitted transaction.
	BlockPeriodMilliseconds int `json:"blockPeriodMilliseconds"`

	// BlockGasLimit describes the gas limit of simulated blocks. Zero uses the go-ethereum default.
	BlockGasLimit uint64 `json:"blockGasLimit"`

	// PrivateKeys describes hex encoded keys of the accounts to send transactions from. With the SimulatedBackend
	// these accounts are funded at genesis. With the RPCBackend transactions are signed locally instead of relying on
	// accounts unlocked on the node.
	PrivateKeys []string `json:"privateKeys"`

	// Accounts describes hex encoded addresses of the node's unlocked accounts the RPCBackend sends transactions from,
	// in order. Empty uses every account the node reports.
	Accounts []string `json:"accounts"`

	// ConnectionRetries describes how many times connecting to the RPCBackend is retried.
	ConnectionRetries uint64 `json:"connectionRetries"`
}

// GetInitialBalance parses InitialBalance into wei.
func (c *ChainConfig) GetInitialBalance() (*big.Int, error) {
	balance, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid initial balance %q", c.InitialBalance)
	}
	if balance.IsNegative() || !balance.Equal(balance.Truncate(0)) {
		return nil, errors.Errorf("initial balance %q must be a whole, non-negative amount of wei", c.InitialBalance)
	}
	return balance.BigInt(), nil
}

// GetAccounts parses Accounts.
func (c *ChainConfig) GetAccounts() ([]common.Address, error) {
	accounts, err := utils.HexStringsToAddresses(c.Accounts)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account address")
	}
	return accounts, nil
}

// BlockPeriod returns the configured block period.
func (c *ChainConfig) BlockPeriod() time.Duration {
	return time.Duration(c.BlockPeriodMilliseconds) * time.Millisecond
}

// Validate ensures the configuration describes a usable chain.
func (c *ChainConfig) Validate() error {
	switch c.Backend {
	case SimulatedBackend:
		if len(c.PrivateKeys) == 0 && c.AccountCount < 2 {
			return errors.Errorf("the simulated chain needs at least 2 accounts, %d configured", c.AccountCount)
		}
		if _, err := c.GetInitialBalance(); err != nil {
			return err
		}
		if c.BlockPeriodMilliseconds < 0 {
			return errors.New("the block period cannot be negative")
		}
	case RPCBackend:
		if c.RpcUrl == "" {
			return errors.New("an rpc url must be provided for the rpc chain backend")
		}
		if len(c.Accounts) > 0 && len(c.PrivateKeys) > 0 {
			return errors.New("accounts and private keys cannot both be configured for the rpc chain backend")
		}
		if _, err := c.GetAccounts(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unsupported chain backend '%s', expected '%s' or '%s'", c.Backend, SimulatedBackend, RPCBackend)
	}

	for _, key := range c.PrivateKeys {
		if _, err := utils.HexStringToPrivateKey(key); err != nil {
			return err
		}
	}
	return nil
}
