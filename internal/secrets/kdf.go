package secrets

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const KeySize = 32

// DerivedKey is an AES-256 key stretched from a password.
type DerivedKey [KeySize]byte

// Variant selects the Argon2 flavour.
type Variant string

const (
	Argon2id Variant = "argon2id"
	Argon2i  Variant = "argon2i"
)

// KDFParams are the Argon2 cost parameters.
type KDFParams struct {
	Variant     Variant
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
}

// DefaultKDFParams returns the parameters used by the backup exporter.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Variant:     Argon2id,
		Time:        3,
		MemoryKiB:   65536,
		Parallelism: 1,
	}
}

// ParseVariant parses a variant name such as "argon2id" or "argon2i".
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case "", Argon2id:
		return Argon2id, nil
	case Argon2i:
		return Argon2i, nil
	default:
		return "", fmt.Errorf("unknown argon2 variant %q", s)
	}
}

// DeriveKey stretches password with salt. Invalid parameters are a programming
// error and cause a panic.
func DeriveKey(password, salt []byte, params KDFParams) DerivedKey {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("secrets: salt must be %d bytes, got %d", SaltSize, len(salt)))
	}
	if params.Time == 0 || params.Parallelism == 0 || params.MemoryKiB < 8*uint32(params.Parallelism) {
		panic(fmt.Sprintf("secrets: invalid argon2 parameters %+v", params))
	}

	var raw []byte
	switch params.Variant {
	case Argon2id, "":
		raw = argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Parallelism, KeySize)
	case Argon2i:
		raw = argon2.Key(password, salt, params.Time, params.MemoryKiB, params.Parallelism, KeySize)
	default:
		panic(fmt.Sprintf("secrets: unknown argon2 variant %q", params.Variant))
	}

	var key DerivedKey
	copy(key[:], raw)
	ClearBytes(raw)
	return key
}
