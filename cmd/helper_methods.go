package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/utils"
)

// startSpinner creates and starts a spinner with the given message when not in
// verbose or debug mode and stdout is a terminal.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	animate := !verbose && !debug && utils.IsStdoutTerminal()
	if animate {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running: %s", message)
	}

	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true

		if animate {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if animate {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatError renders a pipeline error for display to the user.
func formatError(err error) string {
	prefix := ui.Error.Sprint("✗") + " "

	switch {
	case errors.Is(err, kerrors.ErrConfig), errors.Is(err, kerrors.ErrInvalidTimestamp):
		return prefix + "Invalid configuration: " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Check your " + ui.Path.Sprint(".env") + " file or the " + ui.Code.Sprint("--timestamp") + " flag"

	case errors.Is(err, kerrors.ErrSecretRetrieval):
		return prefix + "Failed to retrieve passwords from the secret store\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrBadPassword):
		return prefix + "Wrong archive password\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrArchiveCorrupt):
		return prefix + "The archive is corrupt or truncated\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrMalformedBlob), errors.Is(err, kerrors.ErrDecryptFailed):
		return prefix + "Failed to decrypt the JSON export\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrArchiveNotFound):
		return prefix + err.Error()

	default:
		return prefix + "Error: " + err.Error()
	}
}
