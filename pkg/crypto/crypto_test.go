package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	secret := "super-secret-passphrase"

	encrypted, err := EncryptString("sk_live_abc123", secret)
	require.NoError(t, err)
	assert.NotEqual(t, "sk_live_abc123", encrypted)

	decrypted, err := DecryptFromHexString(encrypted, secret)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_abc123", decrypted)
}

func TestEncryptString_FreshNoncePerCall(t *testing.T) {
	secret := "super-secret-passphrase"

	first, err := EncryptString("same plaintext", secret)
	require.NoError(t, err)
	second, err := EncryptString("same plaintext", secret)
	require.NoError(t, err)

	// Two encryptions of the same plaintext must never produce the same
	// ciphertext.
	assert.NotEqual(t, first, second)
}

func TestDecryptFromHexString_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"too short", "abcd"},
		{"garbage ciphertext", "00112233445566778899aabbccddeeff00112233445566778899aabb"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecryptFromHexString(tc.input, "secret")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecryption))
		})
	}
}

func TestDecryptFromHexString_WrongPassphrase(t *testing.T) {
	encrypted, err := EncryptString("payload", "right")
	require.NoError(t, err)

	_, err = DecryptFromHexString(encrypted, "wrong")
	assert.True(t, errors.Is(err, ErrDecryption))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}

func TestVerifyHMAC256(t *testing.T) {
	sig := ComputeHMAC256([]byte("body"), "key")
	assert.True(t, VerifyHMAC256("key", []byte("body"), sig))
	assert.False(t, VerifyHMAC256("other", []byte("body"), sig))
	assert.False(t, VerifyHMAC256("key", []byte("tampered"), sig))
}
