package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	dirName  = ".lazywarden"
	fileName = "audit.jsonl"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	Operation string `json:"op"`

	BackupTimestamp string   `json:"backup_ts,omitempty"`
	Stage           string   `json:"stage,omitempty"`
	Outcome         string   `json:"outcome,omitempty"`
	Path            string   `json:"path,omitempty"`
	Error           string   `json:"error,omitempty"`
	Files           []string `json:"files,omitempty"`
}

// LogPath returns the audit log location for a backup directory.
func LogPath(backupDir string) string {
	return filepath.Join(backupDir, dirName, fileName)
}

// Log appends an entry to the log at logPath. Nothing is written when the
// backup directory holding the log does not exist.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logDir := filepath.Dir(logPath)
	if _, err := os.Stat(filepath.Dir(logDir)); err != nil {
		return
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the log at logPath.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
