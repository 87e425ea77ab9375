// Package canonicalize produces the RFC 8785 (JSON Canonicalization Scheme)
// form of accepted schema models, so two payloads that decode to the same
// model share one fingerprint regardless of key order or whitespace.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// FingerprintPrefix tags fingerprints with their digest algorithm.
const FingerprintPrefix = "sha256:"

// JCS returns the canonical JSON form of v. v is first marshaled with its
// own json tags and marshalers, then canonicalized.
func JCS(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jcs: pre-marshal failed: %w", err)
	}
	return Transform(raw)
}

// Transform canonicalizes raw JSON text.
func Transform(raw []byte) ([]byte, error) {
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs: transform failed: %w", err)
	}
	return out, nil
}

// Fingerprint returns "sha256:<hex>" of the canonical form of v.
func Fingerprint(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return FingerprintPrefix + HashBytes(b), nil
}

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
