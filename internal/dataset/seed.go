package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// SeedHash derives a stable 64-bit value from the seed and key parts. Seeded choices are keyed
// by record identity rather than iteration order, so they do not depend on scheduling.
func SeedHash(seed int64, parts ...string) uint64 {
	sum := seedSum(seed, parts)
	return binary.BigEndian.Uint64(sum[:8])
}

// SeedPick returns a stable index in [0, n). n must be positive.
func SeedPick(n int, seed int64, parts ...string) int {
	return int(SeedHash(seed, parts...) % uint64(n))
}

// SeedKey returns a short hex key for downstream tools that need their own seeded randomness.
func SeedKey(seed int64, parts ...string) string {
	sum := seedSum(seed, parts)
	return hex.EncodeToString(sum[:8])
}

func seedSum(seed int64, parts []string) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(seed, 10)))
	for _, part := range parts {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

var templateToken = regexp.MustCompile(`[a-z0-9]+`)

// TemplateID identifies a question template: the hash of its lower-cased alphanumeric tokens.
// Questions differing only in case or punctuation share a template.
func TemplateID(question string) string {
	normalized := strings.Join(templateToken.FindAllString(strings.ToLower(question), -1), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:6])
}
