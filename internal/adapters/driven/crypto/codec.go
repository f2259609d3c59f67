// Package crypto encrypts provider bearer tokens at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure TokenCodec implements SecretCodec
var _ driven.SecretCodec = (*TokenCodec)(nil)

const (
	// blobVersion is the version byte for the encrypted blob format.
	blobVersion = 0x01

	// nonceSize is the AES-GCM nonce size (12 bytes is standard)
	nonceSize = 12

	// keySize is the derived key size for AES-256
	keySize = 32

	// minSecretLength rejects obviously weak process secrets.
	minSecretLength = 16
)

// hkdfInfo binds derived keys to this use so the same secret cannot be
// replayed as a key elsewhere.
var hkdfInfo = []byte("linkedin-broker token encryption v1")

// ErrWeakSecret is returned when TOKEN_ENCRYPTION_KEY is too short.
var ErrWeakSecret = errors.New("token encryption secret must be at least 16 characters")

// TokenCodec handles AES-256-GCM encryption of bearer tokens.
// The encrypted format is: version(1) || nonce(12) || ciphertext(N)
type TokenCodec struct {
	gcm cipher.AEAD
}

// NewTokenCodec derives the AES key from secret with HKDF-SHA256.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &TokenCodec{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *TokenCodec) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nil, nonce, []byte(plaintext), []byte{blobVersion})

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = blobVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Decrypt opens a blob produced by Encrypt.
// Every failure is reported as domain.ErrDecryption.
func (c *TokenCodec) Decrypt(blob []byte) (string, error) {
	if len(blob) < 1+nonceSize+c.gcm.Overhead() {
		return "", fmt.Errorf("%w: blob too short", domain.ErrDecryption)
	}
	if blob[0] != blobVersion {
		return "", fmt.Errorf("%w: unsupported version %d", domain.ErrDecryption, blob[0])
	}

	nonce := blob[1 : 1+nonceSize]
	plaintext, err := c.gcm.Open(nil, nonce, blob[1+nonceSize:], blob[:1])
	if err != nil {
		return "", domain.ErrDecryption
	}
	return string(plaintext), nil
}
