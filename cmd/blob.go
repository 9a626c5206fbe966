package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/internal/configs"
	"github.com/lazywarden/lazywarden/internal/secrets"
	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/utils"
	"github.com/lazywarden/lazywarden/internal/workflows"
)

var (
	blobOutput        string
	blobSecretID      string
	blobPasswordStdin bool
)

func init() {
	blobCmd.Flags().StringVarP(&blobOutput, "output", "o", "", "write the plaintext to this file instead of stdout")
	blobCmd.Flags().StringVar(&blobSecretID, "secret-id", "", "fetch the password from the secret store")
	blobCmd.Flags().BoolVar(&blobPasswordStdin, "password-stdin", false, "read the password from stdin")
}

func resetBlobCommandState() {
	blobOutput = ""
	blobSecretID = ""
	blobPasswordStdin = false
}

var blobCmd = &cobra.Command{
	Use:   "blob FILE",
	Short: "Decrypts a single encrypted blob file",
	Long: `Decrypts one base64url blob (salt, IV and AES-256-CFB ciphertext) such as
the JSON export found inside a backup archive.

The password comes from the secret store with --secret-id, from stdin with
--password-stdin, or from an interactive prompt.

Examples:
  lazywarden blob bw-backup_2024.json -o vault.json
  lazywarden blob bw-backup_2024.json --secret-id 588b0643-7ba4-4a78-ba3e-9467ad9c81a7`,
	Args: cobra.ExactArgs(1),
	RunE: runBlob,
}

func runBlob(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting blob command")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}
	params, err := cfg.KDFParams()
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}

	password, err := blobPassword(cmd, cfg)
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}
	defer secrets.ClearBytes(password)

	result, err := workflows.DecryptBlobFile(cmd.Context(), workflows.BlobOptions{
		Path:      args[0],
		Output:    blobOutput,
		Password:  password,
		KDFParams: params,
	})
	if err != nil {
		fmt.Println(formatError(err))
		return reportedError{err}
	}

	if result.Output != "" {
		fmt.Println(ui.Success.Sprint("✓") + " Decrypted data saved to " + ui.Path.Sprint(result.Output))
		return nil
	}
	defer secrets.ClearBytes(result.Plaintext)
	_, err = cmd.OutOrStdout().Write(result.Plaintext)
	return err
}

func blobPassword(cmd *cobra.Command, cfg *configs.Config) ([]byte, error) {
	switch {
	case blobSecretID != "":
		store, closeStore, err := newSecretStore(cfg.Bitwarden())
		if err != nil {
			return nil, err
		}
		defer closeStore()

		Logger.Debugf("Fetching password %s", blobSecretID)
		value, err := store.Get(cmd.Context(), blobSecretID)
		if err != nil {
			return nil, err
		}
		return []byte(value), nil

	case blobPasswordStdin:
		return utils.ReadSecret(cmd.InOrStdin())

	default:
		return utils.ReadPassphrase("Password: ")
	}
}
