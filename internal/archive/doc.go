// Package archive extracts password-protected ZIP archives.
//
// Backups are packed as ZIP files whose entries are encrypted with the WinZip
// AES extension (AE-1/AE-2). The outer backup archive contains the encrypted
// JSON blob and a second archive with the vault attachments; each archive has
// its own password.
//
// Failures are mapped onto the shared error taxonomy:
//
//   - ErrArchiveNotFound: the archive path does not exist
//   - ErrArchiveCorrupt: not a ZIP, bad structure, checksum or unsafe entry path
//   - ErrBadPassword: the AES password verifier or authentication code fails
//
// Entries are written below the destination directory with their relative
// paths preserved. Entries that would escape the destination are rejected.
package archive
