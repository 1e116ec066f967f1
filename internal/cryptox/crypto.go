// Package cryptox hashes account secrets so neither directory ever stores
// or compares a plaintext credential.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	scheme  = "argon2id"
	saltLen = 16
	keyLen  = 32
)

var ErrMalformedHash = errors.New("malformed secret hash")

// DeriveKey stretches secret with salt using argon2id
// (1 pass, 64 MiB, 4 lanes, 32-byte key).
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keyLen)
}

// HashSecret derives a key from secret under a fresh random salt and returns
// it in the form "argon2id$<hex salt>$<hex key>".
func HashSecret(secret []byte) string {
	salt := common.GenerateRandByteArray(saltLen)
	return encode(salt, DeriveKey(secret, salt))
}

// VerifySecret reports whether candidate matches the encoded hash.
// The comparison is constant-time. A malformed hash yields ErrMalformedHash.
func VerifySecret(encoded string, candidate []byte) (bool, error) {
	salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	derived := DeriveKey(candidate, salt)
	return subtle.ConstantTimeCompare(key, derived) == 1, nil
}

func encode(salt, key []byte) string {
	return fmt.Sprintf("%s$%s$%s", scheme, hex.EncodeToString(salt), hex.EncodeToString(key))
}

func decode(encoded string) (salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != scheme {
		return nil, nil, ErrMalformedHash
	}
	if salt, err = hex.DecodeString(parts[1]); err != nil || len(salt) == 0 {
		return nil, nil, ErrMalformedHash
	}
	if key, err = hex.DecodeString(parts[2]); err != nil || len(key) != keyLen {
		return nil, nil, ErrMalformedHash
	}
	return salt, key, nil
}
