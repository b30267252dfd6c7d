// Package encryption seals vault contents with XChaCha20-Poly1305.
package encryption

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// prefix versions the sealed format.
const prefix = "xc1"

// ErrFormat is returned for data that was not produced by Seal.
var ErrFormat = errors.New("encryption: unknown format")

// Seal encrypts plaintext with key. additional data is authenticated but
// not stored.
func Seal(plaintext, key, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(prefix)+aead.NonceSize(), len(prefix)+aead.NonceSize()+len(plaintext)+aead.Overhead())
	copy(out, prefix)
	nonce := out[len(prefix):]
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(out, nonce, plaintext, additional), nil
}

// Open decrypts data produced by Seal with the same key and additional
// data.
func Open(data, key, additional []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return nil, ErrFormat
	}
	data = data[len(prefix):]
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("encryption: ciphertext too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, additional)
}
