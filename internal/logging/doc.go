// Package logger provides leveled, colored logging for lazywarden commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always written to stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Extracting %s", path)
//
// Secret values must never be passed to a Logger.
package logger
