package storage

import (
	"context"
	"fmt"
)

// Cipher encrypts values at rest. security.Encryptor satisfies it.
type Cipher interface {
	EncryptString(plaintext string) (string, error)
	DecryptString(ciphertext string) (string, error)
}

// Encrypted wraps a Backend so that values are encrypted before they reach it.
// Keys are stored in the clear.
type Encrypted struct {
	inner  Backend
	cipher Cipher
}

// NewEncrypted decorates inner with cipher
func NewEncrypted(inner Backend, cipher Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: cipher}
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := e.inner.Get(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	plain, err := e.cipher.DecryptString(sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %q: %w", key, err)
	}
	return plain, true, nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	sealed, err := e.cipher.EncryptString(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %q: %w", key, err)
	}
	return e.inner.Set(ctx, key, sealed)
}

func (e *Encrypted) Delete(ctx context.Context, keys ...string) error {
	return e.inner.Delete(ctx, keys...)
}
