package chain

import (
	"github.com/crytic/tokengas/events"
	"github.com/ethereum/go-ethereum/common"
)

// SimulatedBackendEvents defines event emitters for a SimulatedBackend.
type SimulatedBackendEvents struct {
	// BlockCommitted emits events when the simulated chain commits a new block.
	BlockCommitted events.EventEmitter[BlockCommittedEvent]
}

// BlockCommittedEvent describes an event where a new block is committed to the simulated chain.
type BlockCommittedEvent struct {
	// Backend describes the chain which committed the block.
	Backend *SimulatedBackend

	// BlockHash describes the hash of the committed block.
	BlockHash common.Hash
}
