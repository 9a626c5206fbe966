package errors

import "errors"

// Configuration errors abort before any stage runs.
var (
	// ErrConfig indicates a required configuration value is missing or invalid.
	ErrConfig = errors.New("configuration error")

	// ErrInvalidTimestamp indicates the backup timestamp cannot be used to build file names.
	ErrInvalidTimestamp = errors.New("invalid backup timestamp")

	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// ErrNoAuditLog indicates no audit log exists for the backup directory.
var ErrNoAuditLog = errors.New("no audit log found")

// Secret store errors are always fatal.
var (
	// ErrSecretRetrieval indicates a secret could not be fetched from the secret store.
	ErrSecretRetrieval = errors.New("failed to retrieve secret")

	// ErrInvalidSecretID indicates the secret identifier is not a UUID v4.
	ErrInvalidSecretID = errors.New("invalid secret identifier")
)

// Cryptographic errors indicate failures while decoding or decrypting a blob.
var (
	// ErrMalformedBlob indicates the encrypted blob is not valid base64 or is too short.
	ErrMalformedBlob = errors.New("malformed encrypted blob")

	// ErrDecryptFailed indicates the cipher backend rejected the key or IV.
	ErrDecryptFailed = errors.New("failed to decrypt data")
)

// Archive errors indicate issues with the encrypted ZIP archives.
var (
	// ErrArchiveNotFound indicates the archive file does not exist.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrArchiveCorrupt indicates the archive is structurally invalid.
	ErrArchiveCorrupt = errors.New("archive is corrupt")

	// ErrBadPassword indicates the archive password failed the AES verification check.
	ErrBadPassword = errors.New("wrong archive password")
)

// IsSkippable reports whether err describes a missing input that lets the
// pipeline continue with the next independent stage. Any other I/O failure,
// including a missing output directory, is fatal.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrArchiveNotFound)
}
