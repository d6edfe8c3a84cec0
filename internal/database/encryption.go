package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"curalink/internal/constants"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12
	pbkdf2Iterations = 100000
)

// fieldCipher encrypts individual column values with AES-GCM. Encrypted values
// carry a version prefix so plaintext written before encryption was enabled
// still reads back unchanged.
type fieldCipher struct {
	gcm cipher.AEAD
}

func newFieldCipher(enabled bool, secret string) (*fieldCipher, error) {
	if !enabled {
		return &fieldCipher{}, nil
	}

	key, err := deriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &fieldCipher{gcm: gcm}, nil
}

func deriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("CURALINK_ENCRYPTION_SECRET is required when encryption is enabled")
	}
	if len(secret) < constants.DefaultEncryptionSecretMinLen {
		return nil, fmt.Errorf("encryption secret must be at least %d characters long", constants.DefaultEncryptionSecretMinLen)
	}

	return pbkdf2.Key([]byte(secret), []byte(constants.EncryptionSalt), pbkdf2Iterations, keySize, sha256.New), nil
}

func (c *fieldCipher) enabled() bool {
	return c != nil && c.gcm != nil
}

// EncryptIfEnabled returns plaintext unchanged when encryption is off
func (c *fieldCipher) EncryptIfEnabled(plaintext string) (string, error) {
	if plaintext == "" || !c.enabled() {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	// Prepend nonce to ciphertext for storage
	data := append(nonce, sealed...)
	return constants.EncryptedValuePrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecryptIfEnabled decrypts prefixed values and passes everything else through
func (c *fieldCipher) DecryptIfEnabled(value string) (string, error) {
	if !strings.HasPrefix(value, constants.EncryptedValuePrefix) {
		return value, nil
	}
	if !c.enabled() {
		return "", fmt.Errorf("encrypted value found but encryption is disabled")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, constants.EncryptedValuePrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}
