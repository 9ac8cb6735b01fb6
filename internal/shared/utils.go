// Package shared provides utility functions for working with random
// strings and secure memory wiping.
package shared

import (
	"crypto/rand"
	"math/big"
)

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeSalt returns a random alphanumeric string of length n, the salt shape
// used inside password digests.
func MakeSalt(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(saltChars)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = saltChars[idx.Int64()]
	}
	return string(out), nil
}

// WipeByteArray overwrites the contents of b with zeros. It is used for
// passwords read from the terminal. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
