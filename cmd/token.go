package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/keyring"
	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/utils"
)

var (
	tokenOrganization string
	tokenStdin        bool
)

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenOrganization, "org", "", "organization ID (defaults to ORGANIZATION_ID)")

	tokenSetCmd.Flags().BoolVar(&tokenStdin, "stdin", false, "read the token from stdin")

	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	tokenCmd.AddCommand(tokenStatusCmd)
}

func resetTokenCommandState() {
	tokenOrganization = ""
	tokenStdin = false
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manages the secret store access token in the OS keyring",
	Long: `Stores the Bitwarden Secrets Manager access token in the operating system
keyring so it does not have to be kept in a .env file. A token set in the
environment or a .env file always takes precedence.`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Stores the access token (read from stdin or a prompt)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := tokenOrg()
		if err != nil {
			return err
		}

		var token []byte
		if tokenStdin || !utils.IsTerminal() {
			token, err = utils.ReadSecret(cmd.InOrStdin())
		} else {
			token, err = utils.ReadPassphrase("Access token: ")
		}
		if err != nil {
			fmt.Println(formatError(err))
			return reportedError{err}
		}
		if len(token) == 0 {
			err := fmt.Errorf("%w: access token is empty", kerrors.ErrConfig)
			fmt.Println(formatError(err))
			return reportedError{err}
		}

		Logger.Debugf("Saving access token for organization %s", org)
		if err := keyring.SaveAccessToken(org, string(token)); err != nil {
			return reportedError{Logger.ErrorfAndReturn("failed to store access token: %v", err)}
		}

		fmt.Println(ui.Success.Sprint("✓") + " Access token stored for organization " + ui.Highlight.Sprint(org))
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Removes the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := tokenOrg()
		if err != nil {
			return err
		}

		if !keyring.HasAccessToken(org) {
			fmt.Println(ui.Info.Sprint("ℹ") + " No access token stored for organization " + ui.Highlight.Sprint(org))
			return nil
		}
		if err := keyring.DeleteAccessToken(org); err != nil {
			return reportedError{Logger.ErrorfAndReturn("failed to delete access token: %v", err)}
		}

		fmt.Println(ui.Success.Sprint("✓") + " Access token removed for organization " + ui.Highlight.Sprint(org))
		return nil
	},
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows whether an access token is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := tokenOrg()
		if err != nil {
			return err
		}

		if keyring.HasAccessToken(org) {
			fmt.Println(ui.Success.Sprint("✓") + " Access token stored for organization " + ui.Highlight.Sprint(org))
		} else {
			fmt.Println(ui.Warning.Sprint("⚠") + " No access token stored for organization " + ui.Highlight.Sprint(org))
		}
		return nil
	},
}

// tokenOrg resolves the organization from --org or the configuration.
func tokenOrg() (string, error) {
	if tokenOrganization != "" {
		return tokenOrganization, nil
	}

	cfg, err := loadConfig()
	if err == nil && cfg.OrganizationID == "" {
		err = fmt.Errorf("%w: ORGANIZATION_ID is not set, pass --org", kerrors.ErrConfig)
	}
	if err != nil {
		fmt.Println(formatError(err))
		return "", reportedError{err}
	}
	return cfg.OrganizationID, nil
}
