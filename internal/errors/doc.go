// Package errors provides typed error values for the lazywarden recovery tool.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. The recovery
// pipeline relies on this to decide whether a failed stage is skipped or
// aborts the run.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Configuration errors: missing or invalid settings (ErrConfig, ErrInvalidTimestamp)
//   - Secret store errors: retrieval failures (ErrSecretRetrieval)
//   - Crypto errors: blob decoding and decryption (ErrMalformedBlob, ErrDecryptFailed)
//   - Archive errors: ZIP handling (ErrArchiveNotFound, ErrArchiveCorrupt, ErrBadPassword)
//
// # Skip or Abort
//
// Only ErrArchiveNotFound is recoverable: the pipeline reports it and moves
// on to the next independent stage. Every other error aborts the run, even
// one that wraps fs.ErrNotExist from a write. IsSkippable encodes that rule.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("opening %s: %w", path, errors.ErrArchiveNotFound)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Recover(ctx, opts)
//	if errors.Is(err, kerrors.ErrBadPassword) {
//	    // Show user-friendly message
//	}
package errors
