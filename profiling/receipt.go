package profiling

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// PollingConfig describes how AwaitReceipt polls for a receipt.
type PollingConfig struct {
	// InitialInterval describes the delay after the first unsuccessful poll.
	InitialInterval time.Duration

	// MaxInterval caps the delay between polls.
	MaxInterval time.Duration

	// Multiplier describes the growth of the delay after each unsuccessful poll.
	Multiplier float64

	// Timeout bounds the total time spent polling.
	Timeout time.Duration
}

// DefaultPollingConfig returns the polling configuration used when none is provided.
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      1.5,
		Timeout:         30 * time.Second,
	}
}

// withDefaults replaces unset or invalid values with their defaults. Polling is always bounded.
func (p PollingConfig) withDefaults() PollingConfig {
	defaults := DefaultPollingConfig()
	if p.InitialInterval <= 0 {
		p.InitialInterval = defaults.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = defaults.MaxInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaults.Multiplier
	}
	if p.Timeout <= 0 {
		p.Timeout = defaults.Timeout
	}
	return p
}

// ReceiptReader describes a client which can fetch transaction receipts.
type ReceiptReader interface {
	// TransactionReceipt returns the receipt of a mined transaction, or ethereum.NotFound while it is pending.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error)
}

// errReceiptPending signals another poll is needed.
var errReceiptPending = errors.New("receipt pending")

// AwaitReceipt polls for the receipt of the given transaction until it is mined, backing off exponentially between
// polls. The timeout bounds both the total polling time and each individual query, so a node which stops responding
// cannot stall the pipeline. Returns a ReceiptTimeoutError if the transaction is not mined within the configured
// timeout, a ReceiptError if the client fails, a MalformedReceiptError if the receipt reports no gas used, or the
// context's error if it is cancelled.
func AwaitReceipt(ctx context.Context, client ReceiptReader, txHash common.Hash, config PollingConfig) (*coreTypes.Receipt, error) {
	config = config.withDefaults()

	pollCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = config.InitialInterval
	policy.MaxInterval = config.MaxInterval
	policy.Multiplier = config.Multiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = config.Timeout
	policy.Reset()

	var receipt *coreTypes.Receipt
	poll := func() error {
		r, err := client.TransactionReceipt(pollCtx, txHash)
		if ctxErr := pollCtx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if errors.Is(err, ethereum.NotFound) || (err == nil && r == nil) {
			return errReceiptPending
		}
		if err != nil {
			return backoff.Permanent(&ReceiptError{TxHash: txHash, Err: err})
		}
		receipt = r
		return nil
	}

	err := backoff.Retry(poll, backoff.WithContext(policy, pollCtx))
	if err != nil {
		// Cancellation of the caller's context is reported as is. Only the poll deadline is a timeout.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, errReceiptPending) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &ReceiptTimeoutError{TxHash: txHash, Timeout: config.Timeout}
		}
		return nil, err
	}

	if receipt.GasUsed == 0 {
		return nil, &MalformedReceiptError{TxHash: txHash, Reason: "the receipt reports no gas used"}
	}
	return receipt, nil
}
