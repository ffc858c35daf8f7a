package config

// DefaultChainConfig obtains a default configuration for the chain: an in-process simulated chain with ten funded
// accounts which produces a block for every transaction.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		Backend:                 SimulatedBackend,
		RpcUrl:                  "http://127.0.0.1:8545",
		AccountCount:            10,
		InitialBalance:          "1000000000000000000000000",
		BlockPeriodMilliseconds: 0,
		BlockGasLimit:           0,
		PrivateKeys:             []string{},
		ConnectionRetries:       3,
	}
}
