package workflows

import (
	"os"
	"path/filepath"
)

// Layout derives every file path of a recovery run from the backup directory
// and the backup timestamp. All methods are pure.
type Layout struct {
	BaseDir   string
	Timestamp string
}

// EncryptedZip is the password-protected backup archive.
func (l Layout) EncryptedZip() string {
	return filepath.Join(l.BaseDir, "bw-backup_"+l.Timestamp+".zip")
}

// OutputDir receives the contents of the backup archive.
func (l Layout) OutputDir() string {
	return filepath.Join(l.BaseDir, "decrypted_zip_"+l.Timestamp)
}

// EncryptedJSON is the encrypted JSON blob inside the extracted archive.
func (l Layout) EncryptedJSON() string {
	return filepath.Join(l.OutputDir(), "bw-backup_"+l.Timestamp+".json")
}

// DecryptedJSON is where the plaintext vault export is written.
func (l Layout) DecryptedJSON() string {
	return filepath.Join(l.OutputDir(), "decrypted_bw-backup_"+l.Timestamp+".json")
}

// AttachmentsZip is the nested attachments archive.
func (l Layout) AttachmentsZip() string {
	return filepath.Join(l.OutputDir(), "attachments_"+l.Timestamp+".zip")
}

// AttachmentsDir receives the contents of the attachments archive.
func (l Layout) AttachmentsDir() string {
	return filepath.Join(l.OutputDir(), "attachments")
}

// PathStatus describes one resolved path and whether it exists.
type PathStatus struct {
	Name   string
	Path   string
	Exists bool
}

// Inspect resolves every path of the layout and checks which ones exist.
func (l Layout) Inspect() []PathStatus {
	paths := []PathStatus{
		{Name: "encrypted zip", Path: l.EncryptedZip()},
		{Name: "output dir", Path: l.OutputDir()},
		{Name: "encrypted json", Path: l.EncryptedJSON()},
		{Name: "decrypted json", Path: l.DecryptedJSON()},
		{Name: "attachments zip", Path: l.AttachmentsZip()},
		{Name: "attachments dir", Path: l.AttachmentsDir()},
	}
	for i := range paths {
		_, err := os.Stat(paths[i].Path)
		paths[i].Exists = err == nil
	}
	return paths
}
