package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/changescore/schema"
)

// Color variables for console output.
var (
	NotifyColor = color.New(color.FgGreen, color.Bold) // notifyColor marks authors that get a digest.
	ReviewColor = color.New(color.FgYellow)            // reviewColor marks authors above threshold without packages.
	BelowColor  = color.New(color.FgCyan)              // belowColor is informational only.
)

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(label schema.DigestLabel) string {
	text := string(label)
	switch label {
	case schema.NotifyLabel:
		return NotifyColor.Sprint(text)
	case schema.ReviewLabel:
		return ReviewColor.Sprint(text)
	default:
		return BelowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// DateTimeFormat is the timestamp layout used in tables and CSV output.
const DateTimeFormat = "2006-01-02 15:04:05"
