// Package hash provides keyed digests for short-lived secrets.
//
// Callers store only the digest and later verify a candidate plaintext
// against it. Verification never panics on malformed digests; it simply
// reports a mismatch.
package hash
