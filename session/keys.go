package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const MinSecretLength = 32

// Keys - ключи подписи и шифрования cookie и ключ CSRF.
type Keys struct {
	Hash  []byte
	Block []byte
	CSRF  []byte
}

// DeriveKeys выводит независимые ключи из одного секрета через HKDF-SHA256.
func DeriveKeys(secret string) (Keys, error) {
	if len(secret) < MinSecretLength {
		return Keys{}, fmt.Errorf("session secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("tournament-admin/session/v1"))
	k := Keys{
		Hash:  make([]byte, 64),
		Block: make([]byte, 32),
		CSRF:  make([]byte, 32),
	}
	for _, b := range [][]byte{k.Hash, k.Block, k.CSRF} {
		if _, err := io.ReadFull(r, b); err != nil {
			return Keys{}, fmt.Errorf("derive session keys: %w", err)
		}
	}
	return k, nil
}
