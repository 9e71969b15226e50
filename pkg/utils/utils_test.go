package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestValidateWaitlist(t *testing.T) {
	tests := []struct {
		name, email string
		field       string
	}{
		{"", "a@b.com", "name"},
		{"   ", "a@b.com", "name"},
		{"Ada", "", "email"},
		{"Ada", "ada.example.com", "email"},
		{"Ada", "ada@example", "email"},
		{"Ada", "ada@example.com", ""},
	}
	for _, tt := range tests {
		err := ValidateWaitlist(tt.name, tt.email)
		if tt.field == "" {
			assert.NoError(t, err, "%q %q", tt.name, tt.email)
			continue
		}
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "%q %q", tt.name, tt.email)
		assert.Equal(t, tt.field, ve.Field)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "not-a-hash")
	assert.Error(t, err)
}

func TestPasswordParamsReadFromHash(t *testing.T) {
	// Hash produced with m=19456,t=2,p=1 for "hunter2".
	salt := base64.RawStdEncoding.EncodeToString([]byte("0123456789abcdef"))
	hash := argon2.IDKey([]byte("hunter2"), []byte("0123456789abcdef"), 2, 19456, 1, 32)
	encoded := "$argon2id$v=19$m=19456,t=2,p=1$" + salt + "$" + base64.RawStdEncoding.EncodeToString(hash)

	ok, err := VerifyPassword("hunter2", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = VerifyPassword("hunter2", "$argon2id$v=16$m=19456,t=2,p=1$"+salt+"$abcd")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestSealOpen(t *testing.T) {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	key, err := ParseEncryptionKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)

	sealed, err := Seal(key, "JBSWY3DPEHPK3PXP", "admin-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1:"))
	assert.NotContains(t, sealed, "JBSWY3DPEHPK3PXP")

	plain, err := Open(key, sealed, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", plain)

	_, err = Open(key, sealed, "admin-2")
	assert.Error(t, err, "sealed values are bound to their owner")

	_, err = Open(key, "plaintext", "admin-1")
	assert.ErrorIs(t, err, ErrSealed)

	_, err = ParseEncryptionKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrEncryptionKey)
}
