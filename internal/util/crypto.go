package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// TokenBytes is the entropy of a session token: 256 bits.
const TokenBytes = 32

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// RandomToken returns n bytes from crypto/rand, hex-encoded.
func RandomToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
