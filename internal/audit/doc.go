// Package audit records the outcome of every recovery stage.
//
// Each run appends one entry per pipeline stage to a JSON Lines log kept next
// to the backups:
//
//	<backup dir>/.lazywarden/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Operation name and the backup timestamp being recovered
//   - Stage name, outcome (continue, skip, abort) and the path it concerned
//   - The error message for skipped or aborted stages
//
// Secret values are never recorded.
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// missing backup directory), the run continues without error. A recovery
// should never fail just because the trail could not be written.
package audit
