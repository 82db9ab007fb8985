package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes UI components to a writer. Commands that do not need a
// Runner print through one.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer that writes to w, or os.Stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintFailure prints a failure box with troubleshooting tips
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintPleaseWait prints a notice for an operation that blocks for a while,
// e.g. PrintPleaseWait("Scanning for displays", "up to 10 seconds").
func (p *Printer) PrintPleaseWait(message, durationHint string) {
	style := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true).PaddingLeft(2)
	hint := lipgloss.NewStyle().Foreground(MutedColor).Italic(true)

	line := style.Render("⏳ " + message)
	if durationHint != "" {
		line += " " + hint.Render("("+durationHint+")")
	}
	line += style.Render("...")

	p.Newline()
	p.Println(line)
	p.Newline()
}

// PrintTable prints rows as aligned columns under a bold header row.
func (p *Printer) PrintTable(columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i := range columns {
			if i < len(row) && lipgloss.Width(row[i]) > widths[i] {
				widths[i] = lipgloss.Width(row[i])
			}
		}
	}

	headStyle := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	p.Println(formatRow(columns, widths, headStyle))
	cell := lipgloss.NewStyle().Foreground(TextColor)
	for _, row := range rows {
		p.Println(formatRow(row, widths, cell))
	}
}

func formatRow(row []string, widths []int, style lipgloss.Style) string {
	line := " "
	for i, w := range widths {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		line += " " + style.Width(w).Render(value) + " "
	}
	return line
}
