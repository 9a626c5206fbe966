package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lazywarden/lazywarden/internal/configs"
	"github.com/lazywarden/lazywarden/internal/keyring"
	logger "github.com/lazywarden/lazywarden/internal/logging"
	"github.com/lazywarden/lazywarden/internal/secretstore"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	configFile string
	envFiles   []string
	backupDir  string
	timestamp  string
	kdfVariant string
)

// Seams replaced in tests.
var (
	keyringLookup = keyring.GetAccessToken

	newSecretStore = func(cfg secretstore.BitwardenConfig) (secretstore.Store, func(), error) {
		store, err := secretstore.NewBitwarden(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
)

// Register attaches the persistent flags and every sub-command to root.
func Register(root *cobra.Command) {
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	registerPersistentFlags(root.PersistentFlags())

	root.AddCommand(decryptCmd)
	root.AddCommand(pathsCmd)
	root.AddCommand(blobCmd)
	root.AddCommand(tokenCmd)
	root.AddCommand(logCmd)
	root.AddCommand(configCmd)
}

func registerPersistentFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.StringVarP(&configFile, "config", "c", "", "optional TOML config file")
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.StringVar(&backupDir, "backup-dir", "", "directory holding the backup archives (overrides BACKUP_DIR)")
	flags.StringVarP(&timestamp, "timestamp", "t", "", "backup timestamp (overrides TIMESTAMP)")
	flags.StringVar(&kdfVariant, "kdf", "", "argon2 variant used by the exporter: argon2id or argon2i (overrides KDF_VARIANT)")
}

// loadConfig assembles the configuration and applies flag overrides.
func loadConfig() (*configs.Config, error) {
	cfg, err := configs.Load(configs.LoadOptions{
		ConfigFile: configFile,
		EnvFiles:   envFiles,
		Keyring:    keyringLookup,
	})
	if err != nil {
		return nil, err
	}

	if backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if timestamp != "" {
		cfg.Timestamp = timestamp
	}
	if kdfVariant != "" {
		cfg.KDFVariant = kdfVariant
	}

	Logger.Debugf("Loaded config: backup dir %s, timestamp %s, kdf %s", cfg.BackupDir, cfg.Timestamp, cfg.KDFVariant)
	return cfg, nil
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configFile = ""
	envFiles = nil
	backupDir = ""
	timestamp = ""
	kdfVariant = ""
	resetDecryptCommandState()
	resetBlobCommandState()
	resetTokenCommandState()
	resetLogCommandState()
	resetConfigInitState()
}
