package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazywarden/lazywarden/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "lazywarden",
	Short: "Lazywarden - decrypts Bitwarden backups made by lazywarden.",
	Long: `Lazywarden restores encrypted Bitwarden vault backups.

A backup is a password-protected ZIP archive holding an encrypted JSON export
and a second password-protected archive of attachments. The passwords are
fetched from Bitwarden Secrets Manager.

Usage:
  lazywarden <command> [flags]

Available Commands:
  decrypt    Decrypt a backup
  paths      Show the resolved backup paths
  blob       Decrypt a single encrypted blob
  token      Manage the access token in the OS keyring
  log        View the audit log

Run 'lazywarden help <command>' for more details on a specific command.
`,
}

func init() {
	cmd.Register(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
