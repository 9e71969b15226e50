package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// sealedPrefix versions the ciphertext format so keys can be rotated later.
const sealedPrefix = "v1:"

var (
	ErrEncryptionKey = errors.New("encryption key must be base64-encoded 32 bytes")
	ErrSealed        = errors.New("malformed sealed value")
)

// ParseEncryptionKey decodes a base64 AES-256 key as supplied in ENCRYPTION_KEY.
func ParseEncryptionKey(keyBase64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyBase64))
	if err != nil || len(key) != 32 {
		return nil, ErrEncryptionKey
	}
	return key, nil
}

// Seal encrypts plaintext with AES-256-GCM and binds it to owner, which must be
// passed again to Open. Output is "v1:" + base64(nonce || ciphertext).
func Seal(key []byte, plaintext, owner string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	out := gcm.Seal(nonce, nonce, []byte(plaintext), []byte(owner))
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. It fails if owner differs from the one used to seal.
func Open(key []byte, sealed, owner string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", ErrSealed
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", ErrSealed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", ErrSealed
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(owner))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
