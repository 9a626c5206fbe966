package cmd

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	logger "github.com/lazywarden/lazywarden/internal/logging"
	"github.com/lazywarden/lazywarden/internal/secretstore"
)

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// createTestCLI creates a complete CLI instance for testing with the given arguments.
func createTestCLI(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	ResetGlobalState()
	Logger = logger.Logger{}
	t.Cleanup(ResetGlobalState)

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	rootCmd := &cobra.Command{
		Use:   "lazywarden",
		Short: "Lazywarden - decrypts Bitwarden backups made by lazywarden.",
	}
	Register(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetContext(context.Background())

	return rootCmd
}

// isolateConfig clears every configuration source that could leak in from the
// machine running the tests.
func isolateConfig(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"API_URL", "IDENTITY_URL", "ORGANIZATION_ID", "ACCESS_TOKEN", "TIMESTAMP",
		"BACKUP_DIR", "KDF_VARIANT", "BW_STATE_FILE",
		"ENCRYPTION_PASSWORD_SECRET_ID", "ZIP_PASSWORD_SECRET_ID", "ZIP_ATTACHMENT_PASSWORD_SECRET_ID",
	} {
		t.Setenv(key, "")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
	})

	originalLookup := keyringLookup
	keyringLookup = func(string) (string, error) { return "", nil }
	t.Cleanup(func() { keyringLookup = originalLookup })
}

type mapStore map[string]string

func (m mapStore) Get(_ context.Context, id string) (string, error) {
	v, ok := m[id]
	if !ok {
		return "", kerrors.ErrSecretRetrieval
	}
	return v, nil
}

// useStore makes commands read secrets from store instead of Bitwarden.
func useStore(t *testing.T, store secretstore.Store) {
	t.Helper()

	original := newSecretStore
	newSecretStore = func(secretstore.BitwardenConfig) (secretstore.Store, func(), error) {
		return store, func() {}, nil
	}
	t.Cleanup(func() { newSecretStore = original })
}
