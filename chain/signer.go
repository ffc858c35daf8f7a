package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"

	"github.com/crytic/tokengas/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// transactionBuilder describes the chain queries needed to fill in and submit a locally signed transaction. It is
// satisfied by both ethclient.Client and the simulated backend's client.
type transactionBuilder interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*coreTypes.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *coreTypes.Transaction) error
}

// localSigner signs transactions with private keys held in memory.
type localSigner struct {
	// keys maps each account to its private key.
	keys map[common.Address]*ecdsa.PrivateKey

	// accounts lists the accounts in the order their keys were provided.
	accounts []common.Address

	// lock serializes nonce lookup and submission so that concurrent senders never reuse a nonce.
	lock sync.Mutex
}

// newLocalSigner creates a localSigner for the provided keys.
func newLocalSigner(keys []*ecdsa.PrivateKey) *localSigner {
	signer := &localSigner{
		keys:     make(map[common.Address]*ecdsa.PrivateKey, len(keys)),
		accounts: make([]common.Address, 0, len(keys)),
	}
	for _, key := range keys {
		address := crypto.PubkeyToAddress(key.PublicKey)
		if _, exists := signer.keys[address]; exists {
			continue
		}
		signer.keys[address] = key
		signer.accounts = append(signer.accounts, address)
	}
	return signer
}

// newLocalSignerFromHex creates a localSigner from hex encoded private keys.
func newLocalSignerFromHex(hexKeys []string) (*localSigner, error) {
	keys := make([]*ecdsa.PrivateKey, len(hexKeys))
	for i, hexKey := range hexKeys {
		key, err := utils.HexStringToPrivateKey(hexKey)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return newLocalSigner(keys), nil
}

// Accounts returns the signer's accounts.
func (s *localSigner) Accounts() []common.Address {
	return append([]common.Address(nil), s.accounts...)
}

// sendTransaction builds an EIP-1559 transaction for the request, signs it with the sender's key and submits it
// through the builder. afterSend, if provided, is called while the signer's lock is still held.
func (s *localSigner) sendTransaction(ctx context.Context, builder transactionBuilder, request TransactionRequest, afterSend func()) (common.Hash, error) {
	key, ok := s.keys[request.From]
	if !ok {
		return common.Hash{}, errors.Errorf("no private key is available for account %s", request.From)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	chainID, err := builder.ChainID(ctx)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	nonce, err := builder.PendingNonceAt(ctx, request.From)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	head, err := builder.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	gasTipCap, err := builder.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}

	// Leave room for the base fee to double before the transaction is mined
	gasFeeCap := new(big.Int).Set(gasTipCap)
	if head.BaseFee != nil {
		gasFeeCap.Add(gasFeeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	value := request.Value
	if value == nil {
		value = new(big.Int)
	}

	gas := request.Gas
	if gas == 0 {
		gas, err = builder.EstimateGas(ctx, ethereum.CallMsg{From: request.From, To: request.To, Data: request.Data, Value: value})
		if err != nil {
			return common.Hash{}, errors.WithStack(err)
		}
	}

	tx, err := coreTypes.SignNewTx(key, coreTypes.LatestSignerForChainID(chainID), &coreTypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gas,
		To:        request.To,
		Value:     value,
		Data:      request.Data,
	})
	if err != nil {
		return common.Hash{}, errors.WithStack(err)
	}
	if err = builder.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, errors.WithStack(err)
	}

	if afterSend != nil {
		afterSend()
	}
	return tx.Hash(), nil
}
