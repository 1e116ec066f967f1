package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Used to drop secrets from memory once
// they have been hashed or verified.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
