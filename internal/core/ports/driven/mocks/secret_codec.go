package mocks

import (
	"strings"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure MockSecretCodec implements SecretCodec
var _ driven.SecretCodec = (*MockSecretCodec)(nil)

const mockCodecPrefix = "enc:"

// MockSecretCodec "encrypts" by prefixing. NOT secure - only for testing.
type MockSecretCodec struct {
	EncryptErr error
}

// NewMockSecretCodec creates a new MockSecretCodec
func NewMockSecretCodec() *MockSecretCodec {
	return &MockSecretCodec{}
}

func (m *MockSecretCodec) Encrypt(plaintext string) ([]byte, error) {
	if m.EncryptErr != nil {
		return nil, m.EncryptErr
	}
	return []byte(mockCodecPrefix + plaintext), nil
}

func (m *MockSecretCodec) Decrypt(blob []byte) (string, error) {
	s := string(blob)
	if !strings.HasPrefix(s, mockCodecPrefix) {
		return "", domain.ErrDecryption
	}
	return strings.TrimPrefix(s, mockCodecPrefix), nil
}
