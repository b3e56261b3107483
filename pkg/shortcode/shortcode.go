// Package shortcode generates random alphanumeric short codes.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the 62-symbol set codes are drawn from. At the default
// length of 6 this gives ~5.68e10 combinations.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultLength is the short-code length used when none is configured.
const DefaultLength = 6

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// Generate returns a code of the given length drawn uniformly at random
// from Alphabet using crypto/rand.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}

	return string(buf), nil
}
