package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmPhrase must be typed exactly to approve a dangerous operation.
const ConfirmPhrase = "I AGREE"

// ConfirmDangerousOperation writes a warning box to out and reads one line
// from in. It returns true only if the line is ConfirmPhrase.
func ConfirmDangerousOperation(in io.Reader, out io.Writer, title string, warnings []string, disclaimer string) bool {
	width := GetTerminalWidth()

	lines := []string{"", WarningTitleStyle.Render("   " + WarningMarker + "  WARNING  ─  " + title), ""}
	bullet := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bullet.Render("   • "+warning))
	}
	lines = append(lines, "")

	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer), "")
	}

	_, _ = fmt.Fprintln(out, ResultBoxStyle(width, WarningColor).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprintln(out)

	prompt := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	_, _ = fmt.Fprint(out, prompt.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", ConfirmPhrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}
	if strings.TrimSpace(input) == ConfirmPhrase {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// MasterResetConfirmation asks before erasing a display's stored
// configuration.
func MasterResetConfirmation(in io.Reader, out io.Writer, displayID string) bool {
	return ConfirmDangerousOperation(in, out,
		"MASTER RESET",
		[]string{
			"This erases the Wi-Fi credentials and image server stored on " + displayID,
			"The display will need to be configured again before it can refresh",
			"Keep the display powered until the reset completes",
		},
		"The reset cannot be undone. Note the current settings with "+
			"\"epdsetup-cfg show\" first if you want to restore them later.",
	)
}
