package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHexStringToPrivateKey ensures private keys parse with and without a prefix and derive the expected address.
func TestHexStringToPrivateKey(t *testing.T) {
	key, err := HexStringToPrivateKey("0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", crypto.PubkeyToAddress(key.PublicKey).Hex())

	shortKey, err := HexStringToPrivateKey("01")
	require.NoError(t, err)
	assert.Equal(t, key.D, shortKey.D)

	_, err = HexStringToPrivateKey("not hex")
	assert.Error(t, err)
	_, err = HexStringToPrivateKey("")
	assert.Error(t, err)
}

// TestHexStringsToAddresses ensures addresses parse and malformed addresses are rejected.
func TestHexStringsToAddresses(t *testing.T) {
	addresses, err := HexStringsToAddresses([]string{"0x010000", "7E5F4552091A69125d5DfCb7b8C2659029395Bdf"})
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000010000", addresses[0].Hex())
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addresses[1].Hex())

	_, err = HexStringsToAddresses([]string{"0xzz"})
	assert.Error(t, err)
}
