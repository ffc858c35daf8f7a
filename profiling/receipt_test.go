package profiling

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAwaitReceiptPending ensures receipts which are pending for a few polls are eventually returned.
func TestAwaitReceiptPending(t *testing.T) {
	client := newFakeClient()
	client.pendingPolls = 3

	receipt, err := AwaitReceipt(context.Background(), client, common.HexToHash("0x01"), fastPipelineOptions().Polling)
	require.NoError(t, err)
	assert.EqualValues(t, client.gasUsed, receipt.GasUsed)
	assert.Equal(t, 4, client.polls)
}

// TestAwaitReceiptTimeout ensures polling a transaction which is never mined is bounded.
func TestAwaitReceiptTimeout(t *testing.T) {
	client := newFakeClient()
	client.pendingPolls = 1 << 30

	polling := fastPipelineOptions().Polling
	polling.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := AwaitReceipt(context.Background(), client, common.HexToHash("0x01"), polling)
	var timeoutErr *ReceiptTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, common.HexToHash("0x01"), timeoutErr.TxHash)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// hangingReceiptReader never answers until the query's context is done, like an unresponsive node.
type hangingReceiptReader struct{}

func (hangingReceiptReader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*coreTypes.Receipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// TestAwaitReceiptHungQuery ensures the timeout also bounds a single receipt query which never returns.
func TestAwaitReceiptHungQuery(t *testing.T) {
	polling := fastPipelineOptions().Polling
	polling.Timeout = 50 * time.Millisecond

	result := make(chan error, 1)
	go func() {
		_, err := AwaitReceipt(context.Background(), hangingReceiptReader{}, common.HexToHash("0x02"), polling)
		result <- err
	}()

	select {
	case err := <-result:
		var timeoutErr *ReceiptTimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, common.HexToHash("0x02"), timeoutErr.TxHash)
		assert.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
	case <-time.After(5 * time.Second):
		t.Fatal("AwaitReceipt did not return after its timeout elapsed")
	}
}

// TestAwaitReceiptClientError ensures client failures stop polling immediately.
func TestAwaitReceiptClientError(t *testing.T) {
	client := newFakeClient()
	client.receiptErr = errors.New("connection refused")

	_, err := AwaitReceipt(context.Background(), client, common.HexToHash("0x01"), fastPipelineOptions().Polling)
	var receiptErr *ReceiptError
	require.ErrorAs(t, err, &receiptErr)
	assert.ErrorContains(t, err, "connection refused")
}

// TestAwaitReceiptMalformed ensures receipts which report no gas used are rejected.
func TestAwaitReceiptMalformed(t *testing.T) {
	client := newFakeClient()
	client.gasUsed = 0

	_, err := AwaitReceipt(context.Background(), client, common.HexToHash("0x01"), fastPipelineOptions().Polling)
	var malformedErr *MalformedReceiptError
	assert.ErrorAs(t, err, &malformedErr)
}

// TestAwaitReceiptCancelled ensures cancelling the context stops polling with the context's error.
func TestAwaitReceiptCancelled(t *testing.T) {
	client := newFakeClient()
	client.pendingPolls = 1 << 30

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	polling := fastPipelineOptions().Polling
	polling.Timeout = time.Minute
	_, err := AwaitReceipt(ctx, client, common.HexToHash("0x01"), polling)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestPollingConfigDefaults ensures unset polling values are replaced so that polling is always bounded.
func TestPollingConfigDefaults(t *testing.T) {
	config := PollingConfig{}.withDefaults()
	assert.Equal(t, DefaultPollingConfig(), config)

	config = PollingConfig{InitialInterval: 2 * time.Second, MaxInterval: time.Second}.withDefaults()
	assert.Equal(t, 2*time.Second, config.MaxInterval)
	assert.Equal(t, DefaultPollingConfig().Timeout, config.Timeout)
}
