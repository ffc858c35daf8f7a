package utils

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// GetPrivateKey will return a private key object given a byte slice. Only slices between lengths 1 and 32 (inclusive)
// are valid.
func GetPrivateKey(b []byte) (*ecdsa.PrivateKey, error) {
	if len(b) < 1 || len(b) > 32 {
		return nil, errors.New("invalid private key")
	}

	// Pad the private key slice to a fixed 32-byte array
	paddedPrivateKey := make([]byte, 32)
	copy(paddedPrivateKey[32-len(b):], b)

	privateKey, err := crypto.ToECDSA(paddedPrivateKey)
	return privateKey, errors.WithStack(err)
}

// HexStringToPrivateKey parses a hex encoded private key (with or without the "0x" prefix).
func HexStringToPrivateKey(s string) (*ecdsa.PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "malformed private key")
	}
	return GetPrivateKey(b)
}
