package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash derives a hash over the normalized history text.
// Only the user/agent text participates: timestamps and bookkeeping
// fields do not affect the hash, so two shards holding the same
// conversation hash identically regardless of when it was recorded.
func ContentHash(history []Exchange) string {
	h := sha256.New()
	for _, ex := range history {
		h.Write([]byte(strings.TrimSpace(ex.UserText)))
		h.Write([]byte{0x1f})
		h.Write([]byte(strings.TrimSpace(ex.AgentText)))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
