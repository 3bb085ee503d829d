package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, KeySize)
}

func TestEncryptDecrypt(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	for _, plain := range []string{"4111111111111111", "", "exactly-16-bytes"} {
		sealed, err := c.Encrypt(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, sealed)

		opened, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plain, opened)
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	a, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)
	b, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	for _, input := range []string{"%%%", base64.StdEncoding.EncodeToString([]byte("short")), base64.StdEncoding.EncodeToString([]byte("zz000000000000000000000000000000abcd"))} {
		_, err := c.Decrypt(input)
		assert.ErrorIs(t, err, ErrInvalidCiphertext, input)
	}

	other, err := NewCipher(bytes.Repeat([]byte{9}, KeySize))
	require.NoError(t, err)
	sealed, err := other.Encrypt("4111111111111111")
	require.NoError(t, err)
	opened, err := c.Decrypt(sealed)
	if err == nil {
		assert.NotEqual(t, "4111111111111111", opened)
	}
}

func TestKeyFromBase64(t *testing.T) {
	key, err := KeyFromBase64(base64.StdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)
	assert.Len(t, key, KeySize)

	_, err = KeyFromBase64(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
	_, err = KeyFromBase64("")
	assert.Error(t, err)
	_, err = NewCipher([]byte("short"))
	assert.Error(t, err)
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "************1111", MaskCardNumber("4111 1111 1111 1111"))
	assert.Equal(t, "***", MaskCardNumber("123"))
	assert.Equal(t, "", MaskCardNumber(""))
}
