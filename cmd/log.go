package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/internal/audit"
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/workflows"
)

var (
	logLimit   int
	logReverse bool
	logBackup  string
	logOutcome string
	logSince   string
	logUntil   string
	logJSON    bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logBackup, "backup", "", "filter by backup timestamp")
	logCmd.Flags().StringVar(&logOutcome, "outcome", "", "filter by outcome: continue, skip, abort (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logBackup = ""
	logOutcome = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log of decrypt runs",
	Long: `Displays the stage outcomes recorded by previous decrypt runs in the
backup directory. Secret values are never logged.

Examples:
  lazywarden log                          # View full log
  lazywarden log -n 10                    # Last 10 entries
  lazywarden log --reverse                # Most recent first
  lazywarden log --outcome skip,abort     # Only problems
  lazywarden log --since 2024-01-01       # Filter by date
  lazywarden log --json                   # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}

	result, err := workflows.Log(cmd.Context(), workflows.LogOptions{
		AuditPath: audit.LogPath(cfg.BackupDir),
		Limit:     logLimit,
		Reverse:   logReverse,
		Backup:    logBackup,
		Outcomes:  logOutcome,
		Since:     logSince,
		Until:     logUntil,
	})
	if err != nil {
		fmt.Println(formatLogError(err))
		if isLogUnexpectedError(err) {
			return reportedError{err}
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		return outputLogJSON(result.Entries)
	}

	for _, e := range result.Entries {
		fmt.Printf("%-19s  %-20s  %-22s  %-8s  %s\n",
			workflows.FormatDateTime(e.Timestamp), e.BackupTimestamp, e.Stage, e.Outcome, workflows.FormatDetails(e))
	}
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit log found. Stage outcomes are logged after running " + ui.Code.Sprint("lazywarden decrypt")

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Error.Sprint("✗") + " " + err.Error()

	default:
		return ui.Error.Sprint("✗") + " Failed to read audit log: " + err.Error()
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return false
	default:
		return true
	}
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
