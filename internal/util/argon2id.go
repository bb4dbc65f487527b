package util

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

type Argon2idParams struct {
	Time        uint32 `json:"time"`
	MemoryKiB   uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
	KeyLen      uint32 `json:"key_len"`
}

func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
	}
}

// PasswordHash is a salted Argon2id digest stored alongside an account.
type PasswordHash struct {
	Salt   []byte         `json:"salt"`
	Key    []byte         `json:"key"`
	Params Argon2idParams `json:"params"`
}

// HashPassword derives a fresh salted hash with the default parameters.
func HashPassword(password string) (PasswordHash, error) {
	salt, err := RandomBytes(16)
	if err != nil {
		return PasswordHash{}, fmt.Errorf("generating password salt: %w", err)
	}
	params := DefaultArgon2idParams()
	key := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKiB, params.Parallelism, params.KeyLen)
	return PasswordHash{Salt: salt, Key: key, Params: params}, nil
}

// Verify reports whether password matches the stored hash, in constant
// time over the derived keys.
func (h PasswordHash) Verify(password string) bool {
	if len(h.Key) == 0 || len(h.Salt) == 0 {
		return false
	}
	key := argon2.IDKey([]byte(password), h.Salt, h.Params.Time, h.Params.MemoryKiB, h.Params.Parallelism, h.Params.KeyLen)
	return subtle.ConstantTimeCompare(key, h.Key) == 1
}
