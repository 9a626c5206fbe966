package secrets

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

func TestDecodeBlob_RoundTrip(t *testing.T) {
	for n := 0; n <= 67; n++ {
		want := &EncryptedBlob{Ciphertext: make([]byte, n)}
		mustRead(t, want.Salt[:])
		mustRead(t, want.IV[:])
		mustRead(t, want.Ciphertext)

		encoded := EncodeBlob(want)
		if strings.Contains(encoded, "=") {
			t.Fatalf("EncodeBlob should not pad, got %q", encoded)
		}

		got, err := DecodeBlob(encoded)
		if err != nil {
			t.Fatalf("DecodeBlob(len=%d) failed: %v", n, err)
		}
		if got.Salt != want.Salt || got.IV != want.IV {
			t.Errorf("len=%d: salt/iv mismatch", n)
		}
		if !bytes.Equal(got.Ciphertext, want.Ciphertext) {
			t.Errorf("len=%d: ciphertext mismatch", n)
		}
	}
}

func TestDecodeBlob_AcceptsPaddedAndWhitespace(t *testing.T) {
	raw := make([]byte, 34)
	raw[33] = 0xff
	padded := base64.URLEncoding.EncodeToString(raw)
	if !strings.HasSuffix(padded, "=") {
		t.Fatalf("Expected padded fixture, got %q", padded)
	}

	for _, input := range []string{padded, padded + "\n", "  " + base64.RawURLEncoding.EncodeToString(raw) + "\r\n"} {
		blob, err := DecodeBlob(input)
		if err != nil {
			t.Fatalf("DecodeBlob(%q) failed: %v", input, err)
		}
		if !bytes.Equal(blob.Ciphertext, []byte{0x00, 0xff}) {
			t.Errorf("DecodeBlob(%q) ciphertext = %x", input, blob.Ciphertext)
		}
	}
}

func TestDecodeBlob_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", base64.RawURLEncoding.EncodeToString(make([]byte, 31))},
		{"standard alphabet", strings.Repeat("+/", 24)},
		{"garbage", "not a blob at all!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBlob(tt.input)
			if !errors.Is(err, kerrors.ErrMalformedBlob) {
				t.Errorf("Expected ErrMalformedBlob, got: %v", err)
			}
		})
	}
}

func TestDecodeBlob_ExactlyHeader(t *testing.T) {
	blob, err := DecodeBlob(base64.RawURLEncoding.EncodeToString(make([]byte, 32)))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(blob.Ciphertext) != 0 {
		t.Errorf("Expected empty ciphertext, got %d bytes", len(blob.Ciphertext))
	}
}

func mustRead(t *testing.T, b []byte) {
	t.Helper()
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("Failed to read random bytes: %v", err)
	}
}
