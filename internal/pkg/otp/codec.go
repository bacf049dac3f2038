package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/shandysiswandi/otplogin/internal/pkg/hash"
)

const (
	// CodeLength is the number of decimal digits in a code.
	CodeLength = 6
	// SaltBytes is the number of random bytes in a salt before hex encoding.
	SaltBytes = 16

	codeMin = 100000
	codeMax = 999999
)

// Codec generates codes and salts, and hashes and verifies codes.
type Codec struct {
	random io.Reader
	hasher func(salt string) hash.Hash
}

// NewCodec returns a Codec backed by crypto/rand and HMAC-SHA256.
func NewCodec() *Codec {
	return &Codec{random: rand.Reader, hasher: newHMAC}
}

// Generate returns a uniformly distributed code in [100000, 999999].
func (c *Codec) Generate() (string, error) {
	n, err := rand.Int(c.random, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// NewSalt returns SaltBytes random bytes, hex encoded.
func (c *Codec) NewSalt() (string, error) {
	b := make([]byte, SaltBytes)
	if _, err := io.ReadFull(c.random, b); err != nil {
		return "", fmt.Errorf("otp: generate salt: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// Hash returns the hex HMAC-SHA256 of code keyed by salt.
func (c *Codec) Hash(code, salt string) (string, error) {
	digest, err := c.hasher(salt).Hash(code)
	if err != nil {
		return "", fmt.Errorf("otp: hash code: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether candidate hashes to digest under salt.
// A malformed digest yields false.
func (c *Codec) Verify(candidate, salt, digest string) bool {
	return c.hasher(salt).Verify(digest, candidate)
}

func newHMAC(salt string) hash.Hash {
	return hash.NewHMACSHA256(salt)
}
