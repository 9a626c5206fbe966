package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/internal/configs"
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/ui"
)

// DefaultConfigFileName is written when config init is given no path.
const DefaultConfigFileName = "lazywarden.toml"

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Writes the resolved settings to a TOML config file",
	Long: `Resolves the configuration from flags, the environment and any .env files,
then writes it as TOML so later runs can pass it with --config. The access
token is never written; keep it in the environment or the OS keyring.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := DefaultConfigFileName
	if len(args) == 1 {
		path = args[0]
	}
	Logger.Infof("Starting config init for %s", path)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}

	_, err = os.Stat(path)
	switch {
	case err == nil && !configInitForce:
		err := fmt.Errorf("%w: %s already exists", kerrors.ErrConfig, path)
		fmt.Println(ui.Warning.Sprint("⚠") + " " + ui.Path.Sprint(path) + " already exists. Use " + ui.Code.Sprint("--force") + " to overwrite it.")
		return reportedError{err}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return reportedError{Logger.ErrorfAndReturn("failed to check %s: %v", path, err)}
	}

	if err := configs.SaveTOML(path, cfg); err != nil {
		return reportedError{Logger.ErrorfAndReturn("failed to write %s: %v", path, err)}
	}

	Logger.Debugf("Wrote config with backup dir %s and timestamp %s", cfg.BackupDir, cfg.Timestamp)
	fmt.Println(ui.Success.Sprint("✓") + " Configuration written to " + ui.Path.Sprint(path))
	return nil
}
