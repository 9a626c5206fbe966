package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/internal/audit"
	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/utils"
	"github.com/lazywarden/lazywarden/internal/workflows"
)

var (
	decryptOnly    []string
	decryptNoAudit bool
)

func init() {
	decryptCmd.Flags().StringSliceVar(&decryptOnly, "only", nil, "only extract attachments matching these glob patterns")
	decryptCmd.Flags().BoolVar(&decryptNoAudit, "no-audit", false, "do not append stage outcomes to the audit log")
}

func resetDecryptCommandState() {
	decryptOnly = nil
	decryptNoAudit = false
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypts a lazywarden backup: archive, vault export and attachments",
	Long: `Fetches the three backup passwords from Bitwarden Secrets Manager, then
extracts the encrypted backup archive, decrypts the JSON vault export and
extracts the attachments archive.

Missing files are reported and skipped. A wrong password or a damaged file
stops the run with a non-zero exit code.

Examples:
  lazywarden decrypt                          # Use TIMESTAMP from .env
  lazywarden decrypt -t 2024_05_01_10_00_00   # Pick a backup
  lazywarden decrypt --only 'item-1/**'       # Restrict attachments`,
	Args: cobra.NoArgs,
	RunE: runDecrypt,
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting decrypt command")

	spinner, cleanup := startSpinner("Decrypting backup...", verbose)
	defer cleanup()

	cfg, err := loadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		spinner.FinalMSG = formatError(err)
		return reportedError{err}
	}
	params, _ := cfg.KDFParams()

	store, closeStore, err := newSecretStore(cfg.Bitwarden())
	if err != nil {
		spinner.FinalMSG = formatError(err)
		return reportedError{err}
	}
	defer closeStore()

	opts := workflows.RecoverOptions{
		Layout:             workflows.Layout{BaseDir: cfg.BackupDir, Timestamp: cfg.Timestamp},
		SecretIDs:          cfg.Secrets,
		Store:              store,
		KDFParams:          params,
		AttachmentPatterns: decryptOnly,
		OnStage: func(r workflows.StageResult) {
			Logger.Debugf("Stage %s: %s", r.Stage, r.Outcome)
		},
	}
	if !decryptNoAudit {
		opts.AuditPath = audit.LogPath(cfg.BackupDir)
	}

	result, err := workflows.Recover(cmd.Context(), opts)

	var report strings.Builder
	if result != nil {
		for _, r := range result.Stages {
			if line := formatStage(r); line != "" {
				report.WriteString(line)
				report.WriteString("\n")
			}
		}
	}

	if err != nil {
		report.WriteString(formatError(err))
		spinner.FinalMSG = report.String()
		return reportedError{err}
	}

	spinner.FinalMSG = report.String()
	cleanup()

	printBanner()
	fmt.Println(ui.Success.Sprint("✅ Decrypting Completed Successfully! 🔓 All files have been decrypted! 🎉"))
	return nil
}

// formatStage returns the user-facing line for a stage, or "" for silent stages.
func formatStage(r workflows.StageResult) string {
	if r.Outcome == workflows.Skip {
		return ui.Warning.Sprint("⚠") + " The file " + ui.Path.Sprint(r.Path) + " does not exist. " + ui.Skipped.Sprint("skipped")
	}
	if r.Outcome != workflows.Continue {
		return ""
	}

	switch r.Stage {
	case workflows.StageExtractOuterZip:
		return ui.Success.Sprint("✓") + " Decrypted ZIP contents saved to " + ui.Path.Sprint(r.Path)
	case workflows.StageDecryptJSON:
		return ui.Success.Sprint("✓") + " Decrypted JSON data saved to " + ui.Path.Sprint(r.Path)
	case workflows.StageExtractAttachmentsZip:
		msg := ui.Success.Sprint("✓") + " Decrypted attachments saved to " + ui.Path.Sprint(r.Path)
		if verbose || debug {
			msg += utils.FormatPaths(r.Files)
		}
		return strings.TrimRight(msg, "\n")
	default:
		return ""
	}
}
