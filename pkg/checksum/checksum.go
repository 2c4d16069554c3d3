// Package checksum computes prefixed checksums of bundle artifacts.
//
// Format: "algorithm:hexvalue" (e.g., "sha256:c0ffee123...", "adler32:babe1337")
package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm represents supported checksum algorithms
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA512
	Adler32
	Blake2b
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	case Adler32:
		return "adler32"
	case Blake2b:
		return "blake2b"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name such as "sha256" to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	case "adler32":
		return Adler32, nil
	case "blake2b":
		return Blake2b, nil
	}
	return SHA256, fmt.Errorf("unknown checksum algorithm: %s", name)
}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case SHA512:
		return sha512.New()
	case Adler32:
		return adler32.New()
	case Blake2b:
		h, _ := blake2b.New256(nil) // only fails for oversized keys
		return h
	default:
		return sha256.New()
	}
}

// Parse splits a checksum string. Unprefixed values are classified by length.
func Parse(checksum string) (Algorithm, string, error) {
	if prefix, value, ok := strings.Cut(checksum, ":"); ok {
		algo, err := ParseAlgorithm(prefix)
		if err != nil {
			return SHA256, "", err
		}
		return algo, value, nil
	}

	switch len(checksum) {
	case 128:
		return SHA512, checksum, nil
	case 8:
		return Adler32, checksum, nil
	default:
		return SHA256, checksum, nil
	}
}

// Calculate returns the prefixed checksum of data.
func Calculate(data []byte, algo Algorithm) string {
	h := algo.newHash()
	h.Write(data)
	return algo.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// Reader streams r through the hash and returns its prefixed checksum.
func Reader(r io.Reader, algo Algorithm) (string, error) {
	h := algo.newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return algo.String() + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the prefixed checksum of a file's contents.
func File(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := Reader(f, algo)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return sum, nil
}

// Verify streams r and checks it against a checksum string, using the
// algorithm the string names.
func Verify(r io.Reader, checksum string) (bool, error) {
	algo, expected, err := Parse(checksum)
	if err != nil {
		return false, err
	}
	actual, err := Reader(r, algo)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(Hex(actual), expected), nil
}

// Hex strips the algorithm prefix.
func Hex(checksum string) string {
	if _, value, ok := strings.Cut(checksum, ":"); ok {
		return value
	}
	return checksum
}
