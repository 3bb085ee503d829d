package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrInvalidCiphertext is returned when a stored value cannot be decrypted.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Cipher encrypts sensitive profile fields (card numbers) before they are stored.
// Values are AES-256-CBC with PKCS#7 padding, encoded as base64(hex(iv) + hex(ciphertext)).
type Cipher struct {
	key []byte
}

// KeyFromBase64 decodes a base64 key and checks its length.
func KeyFromBase64(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, errors.New("encryption key is empty")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes after base64 decoding, got %d", KeySize, len(key))
	}
	return key, nil
}

// NewCipher creates a Cipher for a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes", KeySize)
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Cipher{key: k}, nil
}

// Encrypt seals plainText under a fresh random IV.
func (c *Cipher) Encrypt(plainText string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	padded := pad([]byte(plainText))
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	sealed := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(sealed, padded)

	combined := hex.EncodeToString(iv) + hex.EncodeToString(sealed)
	return base64.StdEncoding.EncodeToString([]byte(combined)), nil
}

// Decrypt reverses Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	ivHexLen := aes.BlockSize * 2
	if len(combined) < ivHexLen {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}
	iv, err := hex.DecodeString(string(combined[:ivHexLen]))
	if err != nil {
		return "", fmt.Errorf("%w: iv: %v", ErrInvalidCiphertext, err)
	}
	sealed, err := hex.DecodeString(string(combined[ivHexLen:]))
	if err != nil {
		return "", fmt.Errorf("%w: body: %v", ErrInvalidCiphertext, err)
	}
	if len(sealed) == 0 || len(sealed)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: body is not a whole number of blocks", ErrInvalidCiphertext)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	plain := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, sealed)

	unpadded, err := unpad(plain)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// MaskCardNumber keeps the last four digits of a card number.
func MaskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidCiphertext)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrInvalidCiphertext)
		}
	}
	return data[:len(data)-n], nil
}
