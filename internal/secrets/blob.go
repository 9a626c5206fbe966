package secrets

import (
	"encoding/base64"
	"fmt"
	"strings"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

const (
	SaltSize = 16
	IVSize   = 16

	headerSize = SaltSize + IVSize
)

// EncryptedBlob is the decoded form of an encrypted backup payload.
type EncryptedBlob struct {
	Salt       [SaltSize]byte
	IV         [IVSize]byte
	Ciphertext []byte
}

// DecodeBlob parses the base64url text of an encrypted blob. Missing padding
// is restored before decoding.
func DecodeBlob(encoded string) (*EncryptedBlob, error) {
	encoded = strings.TrimSpace(encoded)
	if missing := len(encoded) % 4; missing != 0 {
		encoded += strings.Repeat("=", 4-missing)
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrMalformedBlob, err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, need at least %d", kerrors.ErrMalformedBlob, len(raw), headerSize)
	}

	blob := &EncryptedBlob{
		Ciphertext: raw[headerSize:],
	}
	copy(blob.Salt[:], raw[:SaltSize])
	copy(blob.IV[:], raw[SaltSize:headerSize])

	return blob, nil
}

// EncodeBlob returns the unpadded base64url text of blob, the form produced
// by the backup exporter.
func EncodeBlob(blob *EncryptedBlob) string {
	raw := make([]byte, 0, headerSize+len(blob.Ciphertext))
	raw = append(raw, blob.Salt[:]...)
	raw = append(raw, blob.IV[:]...)
	raw = append(raw, blob.Ciphertext...)
	return base64.RawURLEncoding.EncodeToString(raw)
}
