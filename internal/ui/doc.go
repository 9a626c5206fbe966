// Package ui provides semantic text formatting for lazywarden output.
//
// Formatters render with colors when the terminal supports them. When
// NO_COLOR is set or colors are unavailable, text decorations (backticks,
// quotes) are used instead so the meaning survives in plain logs.
//
//	ui.Path.Sprint("/root/lazywarden/backup-drive")
//	ui.Success.Sprint("✓")
//	ui.Skipped.Sprint("skipped")
//	ui.Code.Sprint("lazywarden paths")
package ui
