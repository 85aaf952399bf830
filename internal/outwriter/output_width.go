package outwriter

import (
	"os"

	"github.com/huangsam/changescore/internal/contract"
	"golang.org/x/term"
)

// getMaxTableTextWidth calculates the maximum width for the free-text column of a table
// based on terminal width and the space taken by the fixed columns.
func getMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - fixedWidth - 16
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}
