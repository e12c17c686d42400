package hasher

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/sha3"
)

// Algorithm names accepted by ByName.
const (
	AlgorithmXXH32 = "xxh32"
	AlgorithmSHA3  = "sha3"

	// DefaultAlgorithm is used when no algorithm is configured.
	DefaultAlgorithm = AlgorithmXXH32

	// HexLen is the width of a serialized fingerprint.
	HexLen = 8
)

// ErrUnknownAlgorithm is returned by ByName for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Hasher computes a fixed-width 32-bit digest of a byte buffer.
// Implementations must be deterministic and safe for concurrent use.
type Hasher interface {
	// Sum32 returns the digest of data.
	Sum32(data []byte) uint32

	// Name returns the algorithm name as accepted by ByName.
	Name() string
}

// XXH32 is xxHash32 with a fixed seed.
type XXH32 struct {
	// Seed is mixed into every digest. Fingerprints are only comparable
	// between hashers sharing the same seed.
	Seed uint32
}

// NewXXH32 returns the default hasher: xxHash32 with seed 0.
func NewXXH32() XXH32 {
	return XXH32{Seed: 0}
}

// Sum32 implements Hasher.
func (h XXH32) Sum32(data []byte) uint32 {
	return xxhash.Checksum32S(data, h.Seed)
}

// Name implements Hasher.
func (h XXH32) Name() string {
	return AlgorithmXXH32
}

// SHA3 truncates SHA3-256 to its first 32 bits.
type SHA3 struct{}

// Sum32 implements Hasher.
func (SHA3) Sum32(data []byte) uint32 {
	sum := sha3.Sum256(data)
	return binary.BigEndian.Uint32(sum[:4])
}

// Name implements Hasher.
func (SHA3) Name() string {
	return AlgorithmSHA3
}

// ByName returns the hasher registered under name.
// The empty name selects DefaultAlgorithm. Names are case-insensitive.
func ByName(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmXXH32:
		return NewXXH32(), nil
	case AlgorithmSHA3:
		return SHA3{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownAlgorithm, name, AlgorithmXXH32, AlgorithmSHA3)
	}
}

// Hex serializes a digest as HexLen lowercase hexadecimal digits.
func Hex(sum uint32) string {
	return fmt.Sprintf("%08x", sum)
}

// Fingerprint hashes data with h and returns the serialized digest.
func Fingerprint(h Hasher, data []byte) string {
	return Hex(h.Sum32(data))
}

// IsFingerprint reports whether s has the shape of a serialized digest.
func IsFingerprint(s string) bool {
	if len(s) != HexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
