package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCorrupt is returned when a sealed value cannot be opened.
var ErrCorrupt = errors.New("storage: value failed authentication")

// Secure seals values with XChaCha20-Poly1305 before handing them to an
// inner Store. The key is bound as additional data so values cannot be moved
// between keys.
type Secure struct {
	inner Store
	key   [chacha20poly1305.KeySize]byte
}

// NewSecure wraps inner. The encryption key is derived from secret with SHA-256.
func NewSecure(inner Store, secret string) (*Secure, error) {
	if secret == "" {
		return nil, errors.New("storage: empty encryption key")
	}
	return &Secure{inner: inner, key: sha256.Sum256([]byte(secret))}, nil
}

// Get opens the sealed value at key.
func (s *Secure) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrCorrupt
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	return plaintext, nil
}

// Set seals value and stores it at key.
func (s *Secure) Set(ctx context.Context, key string, value []byte) error {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	return s.inner.Set(ctx, key, aead.Seal(nonce, nonce, value, []byte(key)))
}

// Delete removes key from the inner store.
func (s *Secure) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Clear clears the inner store.
func (s *Secure) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
