package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/workflows"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Shows where a backup's files are expected and which ones exist",
	Long: `Resolves every path used by decrypt for the configured backup directory
and timestamp. No secrets are fetched.`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

func runPaths(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting paths command")

	cfg, err := loadConfig()
	if err == nil {
		err = cfg.ValidateLayout()
	}
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}

	layout := workflows.Layout{BaseDir: cfg.BackupDir, Timestamp: cfg.Timestamp}
	for _, p := range layout.Inspect() {
		if p.Exists {
			fmt.Printf("%s %-16s %s\n", ui.Success.Sprint("✓"), p.Name, ui.Path.Sprint(p.Path))
			continue
		}
		fmt.Printf("%s %-16s %s %s\n", ui.Error.Sprint("✗"), p.Name, ui.Path.Sprint(p.Path), ui.Muted.Sprint("missing"))
	}
	return nil
}
