package hash

// Hash computes and verifies digests of plaintext strings.
type Hash interface {
	// Hash returns the encoded digest of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether hashed is the digest of str.
	Verify(hashed, str string) bool
}
