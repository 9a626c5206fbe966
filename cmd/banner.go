package cmd

import (
	"github.com/common-nighthawk/go-figure"

	"github.com/lazywarden/lazywarden/internal/ui"
	"github.com/lazywarden/lazywarden/internal/utils"
)

// printBanner draws the completion banner on interactive terminals.
func printBanner() {
	if verbose || debug || !utils.IsStdoutTerminal() {
		return
	}
	if ui.NoColor() {
		figure.NewFigure("Lazywarden", "alligator2", true).Print()
		return
	}
	figure.NewColorFigure("Lazywarden", "alligator2", "green", true).Print()
}
