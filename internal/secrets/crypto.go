package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

// DecryptCFB decrypts ciphertext with AES in CFB mode. The plaintext has the
// same length as the ciphertext and is not authenticated.
func DecryptCFB(key, iv, ciphertext []byte) ([]byte, error) {
	stream, err := newCFB(key, iv, false)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}

// EncryptCFB is the inverse of DecryptCFB.
func EncryptCFB(key, iv, plaintext []byte) ([]byte, error) {
	stream, err := newCFB(key, iv, true)
	if err != nil {
		return nil, err
	}

	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)
	return ciphertext, nil
}

func newCFB(key, iv []byte, encrypt bool) (cipher.Stream, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", kerrors.ErrDecryptFailed, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", kerrors.ErrDecryptFailed, block.BlockSize(), len(iv))
	}

	if encrypt {
		return cipher.NewCFBEncrypter(block, iv), nil
	}
	return cipher.NewCFBDecrypter(block, iv), nil
}

// DecryptBlob decodes an encrypted blob and decrypts it with a key derived
// from password.
func DecryptBlob(encoded string, password []byte, params KDFParams) ([]byte, error) {
	blob, err := DecodeBlob(encoded)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(password, blob.Salt[:], params)
	defer ClearBytes(key[:])

	return DecryptCFB(key[:], blob.IV[:], blob.Ciphertext)
}

// EncryptBlob encrypts plaintext with a fresh random salt and IV and returns
// the unpadded base64url text.
func EncryptBlob(plaintext, password []byte, params KDFParams) (string, error) {
	blob := &EncryptedBlob{}
	if _, err := rand.Read(blob.Salt[:]); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := rand.Read(blob.IV[:]); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	key := DeriveKey(password, blob.Salt[:], params)
	defer ClearBytes(key[:])

	ciphertext, err := EncryptCFB(key[:], blob.IV[:], plaintext)
	if err != nil {
		return "", err
	}
	blob.Ciphertext = ciphertext

	return EncodeBlob(blob), nil
}

// BlobDecrypter decrypts blobs with fixed KDF parameters.
type BlobDecrypter struct {
	Params KDFParams
}

// Decrypt implements the pipeline's decrypt step.
func (d BlobDecrypter) Decrypt(encoded string, password []byte) ([]byte, error) {
	return DecryptBlob(encoded, password, d.Params)
}

// ClearBytes overwrites b with zeros.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
