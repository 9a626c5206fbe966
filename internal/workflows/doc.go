// Package workflows orchestrates a lazywarden backup recovery.
//
// Workflows coordinate the secret store, the archive extractor and the blob
// decrypter to turn an encrypted backup directory into plaintext files. They
// are independent of CLI concerns like flag parsing, spinners, and output
// formatting.
//
// # Recovery Pipeline
//
// Recover runs a fixed sequence of stages:
//
//	ResolvePaths -> CheckOuterZip -> ExtractOuterZip -> CheckJSON ->
//	DecryptJSON -> CheckAttachmentsZip -> ExtractAttachmentsZip -> Reported
//
// Each stage returns a StageResult whose Outcome is Continue, Skip, or Abort.
// A missing input file skips ahead: a missing backup archive or attachments
// archive jumps to Reported, and a missing JSON blob jumps to
// CheckAttachmentsZip. Every other failure aborts the run.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package. Use
// errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Recover(ctx, opts)
//	if errors.Is(err, kerrors.ErrBadPassword) {
//	    // The archive password stored in the secret store is wrong.
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Cancellation is checked between stages.
package workflows
