package driven

// SecretCodec encrypts provider bearer tokens before they are persisted.
// The key is process-wide and loaded once at startup.
type SecretCodec interface {
	// Encrypt returns the ciphertext blob for a plaintext token.
	Encrypt(plaintext string) ([]byte, error)

	// Decrypt returns the plaintext token.
	// Fails with domain.ErrDecryption if the blob is malformed or was
	// encrypted under a different key.
	Decrypt(blob []byte) (string, error)
}
