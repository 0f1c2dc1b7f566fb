package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha256"
	BLAKE2b HashAlgorithm = "blake2b"
)

// ParseHashAlgorithm maps a config value to an algorithm
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch HashAlgorithm(strings.ToLower(s)) {
	case SHA256, "":
		return SHA256, nil
	case BLAKE2b:
		return BLAKE2b, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q", s)
}

// Hasher provides extensible hashing functionality
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash computes a hex digest of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case BLAKE2b:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields computes a hash from multiple fields.
// Fields are sorted and joined so the result does not depend on argument order.
func (h *Hasher) HashFields(fields ...string) string {
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	return h.HashString(strings.Join(sorted, "|"))
}

// AppIdentifier derives deterministic app identities from stable properties
type AppIdentifier struct {
	hasher *Hasher
}

// NewAppIdentifier creates a new app identifier
func NewAppIdentifier(hasher *Hasher) *AppIdentifier {
	if hasher == nil {
		hasher = DefaultHasher()
	}
	return &AppIdentifier{hasher: hasher}
}

// GenerateHash hashes the account namespace and the binary name.
// Two machines of the same account adding the same binary get the same hash.
func (ai *AppIdentifier) GenerateHash(account, binaryName string) string {
	return ai.hasher.HashFields(
		fmt.Sprintf("account:%s", account),
		fmt.Sprintf("binary:%s", binaryName),
	)
}

// GenerateShortHash generates a short (16-character) hash for display and ids
func (ai *AppIdentifier) GenerateShortHash(fullHash string) string {
	if len(fullHash) < 16 {
		return fullHash
	}
	return fullHash[:16]
}

// VerifyHash checks if a hash matches the expected app properties
func (ai *AppIdentifier) VerifyHash(hash, account, binaryName string) bool {
	return hash == ai.GenerateHash(account, binaryName)
}
