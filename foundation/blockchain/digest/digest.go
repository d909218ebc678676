// Package digest provides the one-way hash functions used to seal blocks.
// Every function returns a lowercase hex string with no 0x prefix.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of supported algorithm names.
const (
	AlgSHA256    = "sha256"
	AlgKeccak256 = "keccak256"
)

// Size is the length in characters of every digest produced by this package.
const Size = 64

// Func represents a digest function. The same input must always produce
// the same output.
type Func func(data []byte) string

// SHA256 returns the hex encoded SHA-256 digest of the data.
func SHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keccak256 returns the hex encoded Keccak-256 digest of the data. This is
// the hash Ethereum uses, not the finalized SHA3-256.
func Keccak256(data []byte) string {
	return hex.EncodeToString(crypto.Keccak256(data))
}

// New returns the digest function registered under the specified name.
func New(name string) (Func, error) {
	switch strings.ToLower(name) {
	case AlgSHA256, "":
		return SHA256, nil
	case AlgKeccak256:
		return Keccak256, nil
	}

	return nil, fmt.Errorf("unknown digest algorithm %q", name)
}

// Normalize converts a user provided digest into the canonical form
// produced by this package. A 0x prefix is accepted and removed.
func Normalize(hash string) (string, error) {
	hash = strings.TrimSpace(hash)

	if strings.HasPrefix(hash, "0x") || strings.HasPrefix(hash, "0X") {
		b, err := hexutil.Decode("0x" + hash[2:])
		if err != nil {
			return "", fmt.Errorf("decoding hash: %w", err)
		}
		return hex.EncodeToString(b), nil
	}

	b, err := hex.DecodeString(hash)
	if err != nil {
		return "", fmt.Errorf("decoding hash: %w", err)
	}

	return hex.EncodeToString(b), nil
}
