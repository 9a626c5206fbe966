// Package secretstore resolves secret identifiers to secret values.
//
// The recovery pipeline needs three passwords (the JSON encryption password
// and the two archive passwords). They live in Bitwarden Secrets Manager and
// are addressed by UUID v4 identifiers. Store is the single capability the
// pipeline depends on, so tests can substitute an in-memory implementation.
//
// Every failure is reported as ErrSecretRetrieval and is fatal to the run.
// Values are kept in memory only.
package secretstore
