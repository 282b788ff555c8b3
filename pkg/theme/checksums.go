// Checksum helpers for archive entries, in prefixed "algorithm:hexvalue"
// form (e.g. "sha256:c0ffee...", "adler32:babe1337").

package theme

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ChecksumAlgorithm represents supported checksum algorithms
type ChecksumAlgorithm int

const (
	ChecksumSHA256 ChecksumAlgorithm = iota
	ChecksumSHA512
	ChecksumAdler32
	ChecksumBlake2b
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	case ChecksumAdler32:
		return "adler32"
	case ChecksumBlake2b:
		return "blake2b"
	default:
		return "unknown"
	}
}

// ParseChecksumAlgorithm maps an algorithm name onto its constant.
func ParseChecksumAlgorithm(name string) (ChecksumAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sha256", "":
		return ChecksumSHA256, nil
	case "sha512":
		return ChecksumSHA512, nil
	case "adler32":
		return ChecksumAdler32, nil
	case "blake2b":
		return ChecksumBlake2b, nil
	default:
		return ChecksumSHA256, fmt.Errorf("unknown checksum algorithm: %s", name)
	}
}

// ParseChecksum splits a prefixed checksum string. Unprefixed values are
// assumed to be SHA-256.
func ParseChecksum(checksumStr string) (ChecksumAlgorithm, string, error) {
	prefix, value, found := strings.Cut(checksumStr, ":")
	if !found {
		return ChecksumSHA256, checksumStr, nil
	}
	algo, err := ParseChecksumAlgorithm(prefix)
	if err != nil {
		return ChecksumSHA256, "", err
	}
	return algo, value, nil
}

func newHash(algorithm ChecksumAlgorithm) hash.Hash {
	switch algorithm {
	case ChecksumSHA512:
		return sha512.New()
	case ChecksumAdler32:
		return adler32.New()
	case ChecksumBlake2b:
		// New256 only fails for oversized keys
		h, _ := blake2b.New256(nil)
		return h
	default:
		return sha256.New()
	}
}

// CalculateChecksum calculates checksum with prefix
func CalculateChecksum(data []byte, algorithm ChecksumAlgorithm) string {
	h := newHash(algorithm)
	h.Write(data)
	return algorithm.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// VerifyChecksum verifies data against a checksum string
func VerifyChecksum(data []byte, checksumStr string) (bool, error) {
	algo, expected, err := ParseChecksum(checksumStr)
	if err != nil {
		return false, err
	}
	_, actual, _ := strings.Cut(CalculateChecksum(data, algo), ":")
	return strings.EqualFold(actual, expected), nil
}
