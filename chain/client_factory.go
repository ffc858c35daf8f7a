package chain

import (
	"context"

	"github.com/crytic/tokengas/chain/config"
	"github.com/crytic/tokengas/logging"
	"github.com/pkg/errors"
)

// NewClient creates the Client described by the configuration.
func NewClient(ctx context.Context, chainConfig *config.ChainConfig, logger *logging.Logger) (Client, error) {
	if err := chainConfig.Validate(); err != nil {
		return nil, err
	}

	var (
		client Client
		err    error
	)
	switch chainConfig.Backend {
	case config.SimulatedBackend:
		client, err = NewSimulatedBackend(chainConfig, logger)
	case config.RPCBackend:
		client, err = DialRPCBackend(ctx, chainConfig, logger)
	default:
		err = errors.Errorf("unsupported chain backend '%s'", chainConfig.Backend)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
