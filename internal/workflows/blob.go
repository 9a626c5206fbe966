package workflows

import (
	"context"
	"fmt"
	"os"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/secrets"
)

// BlobOptions configures the blob workflow.
type BlobOptions struct {
	// Path is the file holding the base64url blob.
	Path string

	// Output is where the plaintext is written. Empty returns it in the result only.
	Output string

	Password  []byte
	KDFParams secrets.KDFParams
}

// BlobResult contains the outcome of a blob decryption.
type BlobResult struct {
	// Plaintext is set when no output path was given.
	Plaintext []byte

	// Output is the file the plaintext was written to.
	Output string
}

// DecryptBlobFile decrypts a single encrypted blob outside of a full recovery.
//
// Returns ErrArchiveNotFound if Path does not exist.
// Returns ErrMalformedBlob if the file is not a valid blob.
func DecryptBlobFile(ctx context.Context, opts BlobOptions) (*BlobResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("the file %s does not exist: %w", opts.Path, kerrors.ErrArchiveNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.Path, err)
	}

	params := opts.KDFParams
	if params == (secrets.KDFParams{}) {
		params = secrets.DefaultKDFParams()
	}

	plaintext, err := secrets.DecryptBlob(string(data), opts.Password, params)
	if err != nil {
		return nil, err
	}

	if opts.Output == "" {
		return &BlobResult{Plaintext: plaintext}, nil
	}
	defer secrets.ClearBytes(plaintext)

	if err := os.WriteFile(opts.Output, plaintext, 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	return &BlobResult{Output: opts.Output}, nil
}
