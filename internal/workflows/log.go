package workflows

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lazywarden/lazywarden/internal/audit"
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

const auditTimeLayout = "2006-01-02T15:04:05.000000Z"

// LogOptions configures the log workflow.
type LogOptions struct {
	// AuditPath is the audit log file to read.
	AuditPath string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Backup filters entries by backup timestamp.
	Backup string

	// Outcomes filters entries by stage outcome (comma-separated).
	Outcomes string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// Log reads and filters the audit log.
//
// Returns ErrNoAuditLog if no audit log exists.
// Returns ErrInvalidDateFormat if the date format is invalid.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if opts.AuditPath == "" {
		return nil, kerrors.ErrNoAuditLog
	}

	data, err := os.ReadFile(opts.AuditPath)
	if os.IsNotExist(err) {
		return nil, kerrors.ErrNoAuditLog
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	entries, err := audit.ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	if len(entries) == 0 {
		result.Entries = entries
		return result, nil
	}

	filtered := entries

	if opts.Backup != "" {
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return e.BackupTimestamp == opts.Backup
		})
	}

	if opts.Outcomes != "" {
		outcomes := make(map[string]bool)
		for _, o := range strings.Split(opts.Outcomes, ",") {
			outcomes[strings.ToLower(strings.TrimSpace(o))] = true
		}
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			return outcomes[strings.ToLower(e.Outcome)]
		})
	}

	if opts.Since != "" {
		since, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t, ok := parseEntryTime(e.Timestamp)
			return ok && !t.Before(since)
		})
	}

	if opts.Until != "" {
		until, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day.
		until = until.Add(24*time.Hour - time.Nanosecond)
		filtered = filterEntries(filtered, func(e audit.Entry) bool {
			t, ok := parseEntryTime(e.Timestamp)
			return ok && !t.After(until)
		})
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func filterEntries(entries []audit.Entry, keep func(audit.Entry) bool) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func parseEntryTime(ts string) (time.Time, bool) {
	t, err := time.Parse(auditTimeLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, ok := parseEntryTime(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes what a log entry touched.
func FormatDetails(e audit.Entry) string {
	switch {
	case e.Error != "":
		return e.Error
	case len(e.Files) > 3:
		return fmt.Sprintf("%d files", len(e.Files))
	case len(e.Files) > 0:
		return strings.Join(e.Files, ", ")
	default:
		return e.Path
	}
}
