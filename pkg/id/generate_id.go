package id

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenLen is the length of an auth token key in hex characters.
const TokenLen = 40

// NewToken returns exactly 40 lowercase hex characters (20 random bytes).
func NewToken() string {
	return newHex(TokenLen / 2)
}

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return newHex(16)
}

func newHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
