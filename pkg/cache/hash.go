package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashSurface hashes a grid shape, its node statuses and one float field.
// Values are hashed by their IEEE bits, so -0 and 0 differ.
func HashSurface(rows, cols int, spacing float64, status []int, z []float64) string {
	h := sha256.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	put(uint64(rows))
	put(uint64(cols))
	put(math.Float64bits(spacing))
	for _, s := range status {
		put(uint64(s))
	}
	for _, v := range z {
		put(math.Float64bits(v))
	}
	return hex.EncodeToString(h.Sum(nil))
}
