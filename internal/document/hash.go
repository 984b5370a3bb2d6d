package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashing.
// Version suffix enables future algorithm migration.
const (
	DomainRecord = "chronicle/record/v1"
	DomainTable  = "chronicle/table/v1"
)

// HashValue computes a SHA-256 content hash of a document value under a
// domain prefix. Format: SHA256(domain + 0x00 + canonical bytes).
// The null byte separator prevents domain/data boundary ambiguity.
//
// Structurally equal values hash identically regardless of the codec
// that produced them, which is what lets the audit log attribute a
// stable content identity to each mutation.
func HashValue(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
