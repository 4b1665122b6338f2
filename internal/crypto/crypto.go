package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const keySize = 32 // AES-256

// Encrypted bundles the two outputs of an encryption: the ciphertext and the
// IV it was produced with, both base64-encoded.
type Encrypted struct {
	CipherText string
	IV         string
}

// AesCbcCipher implements per-record AES-256-CBC encryption.
type AesCbcCipher struct{}

func NewAesCbcCipher() AesCbcCipher {
	return AesCbcCipher{}
}

// GenerateKey produces a fresh 256-bit key from a cryptographically secure
// random source. Keys are never reused across records.
func (AesCbcCipher) GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// EncryptWithIV encrypts plaintext under key with a fresh random IV and
// returns ciphertext and IV as base64 text.
func (AesCbcCipher) EncryptWithIV(plaintext string, key []byte) (Encrypted, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Encrypted{}, fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Encrypted{}, fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return Encrypted{
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// DecryptWithIV reverses EncryptWithIV. Verification never calls this; it
// exists so a stored ciphertext can be opened explicitly given its key and IV.
func (AesCbcCipher) DecryptWithIV(cipherText, iv string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("invalid IV encoding: %w", err)
	}
	if len(rawIV) != aes.BlockSize {
		return "", fmt.Errorf("IV must be %d bytes, got %d", aes.BlockSize, len(rawIV))
	}

	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(raw))
	}

	plaintext := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, rawIV).CryptBlocks(plaintext, raw)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// KeyToString encodes a key to transportable text.
func KeyToString(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// KeyFromString reverses KeyToString and validates the key size.
func KeyFromString(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
