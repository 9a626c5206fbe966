// Package utils provides small helpers shared by the CLI commands.
//
// # Terminal Utilities
//
//   - ReadPassphrase: prompts for a password without echo
//   - IsTerminal, IsStdoutTerminal: decide whether to prompt or draw spinners
//
// # I/O Utilities
//
//   - ReadSecret: reads a piped secret
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
package utils
