package canon

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// HashWithDomain computes a domain-separated SHA-256 digest:
// SHA256(domain + 0x00 + data), hex encoded. The null separator
// prevents domain/data boundary ambiguity. Every hashing call site in
// the module names its own versioned domain string so digests from
// different record kinds can never collide.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SeedWithDomain derives a 64-bit seed from a domain and a sequence of
// string parts. Parts are NFC normalized and joined with a 0x1F unit
// separator before hashing, so visually identical labels in different
// Unicode compositions seed identically and part boundaries stay
// unambiguous. The seed is the first 8 digest bytes, big-endian.
func SeedWithDomain(domain string, parts ...string) uint64 {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{0x1F})
		}
		h.Write([]byte(norm.NFC.String(part)))
	}
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}
