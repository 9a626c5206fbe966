// Package secrets implements the cryptographic half of backup recovery.
//
// A Bitwarden backup JSON is stored as an encrypted blob:
//
//	base64url( salt[16] || iv[16] || ciphertext[N] )
//
// The base64url text may be missing its trailing '=' padding. Recovery is a
// three step chain:
//
//  1. DecodeBlob splits the text into salt, IV and ciphertext
//  2. DeriveKey stretches the password with Argon2 (time 3, memory 64 MiB,
//     parallelism 1) into a 32-byte key
//  3. DecryptCFB runs AES-256 in CFB mode over the ciphertext
//
// # Security Considerations
//
// CFB provides confidentiality only. A corrupted or tampered ciphertext
// decrypts to garbage without any error. The format is kept as-is so that
// existing backups remain readable; ErrDecryptFailed is only returned when the
// cipher rejects the key or IV.
//
// Derived keys are never cached; every DecryptBlob call derives a fresh key
// and zeroes it afterwards.
package secrets
