package ui

import (
	"strings"
)

// Detail is one key/value line in a header or result box.
type Detail struct {
	Key   string
	Value string
}

// D is shorthand for building a Detail.
func D(key, value string) Detail {
	return Detail{Key: key, Value: value}
}

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType
	Title           string   // e.g., "Credentials saved"
	Details         []Detail // rendered in order
	Error           error    // failure results only
	Troubleshooting []string // failure results only
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, D(key, value))
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{""}
	switch r.Type {
	case ResultFailure:
		lines = append(lines, ErrorTitleStyle.Render("   "+FailureMarker+"  FAILED  ─  "+r.Title), "")
		if r.Error != nil {
			lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
		}
		if len(r.Troubleshooting) > 0 {
			lines = append(lines, renderTroubleshooting(r.Troubleshooting, width), "")
		}
		return ResultBoxStyle(width, ErrorColor).Render(strings.Join(lines, "\n"))
	case ResultWarning:
		lines = append(lines, WarningTitleStyle.Render("   "+WarningMarker+"  WARNING  ─  "+r.Title), "")
		lines = append(lines, renderDetails(r.Details)...)
		lines = append(lines, "")
		return ResultBoxStyle(width, WarningColor).Render(strings.Join(lines, "\n"))
	default:
		lines = append(lines, SuccessTitleStyle.Render("   "+SuccessMarker+"  SUCCESS  ─  "+r.Title), "")
		lines = append(lines, renderDetails(r.Details)...)
		lines = append(lines, "")
		return ResultBoxStyle(width, SuccessColor).Render(strings.Join(lines, "\n"))
	}
}

func renderDetails(details []Detail) []string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	return lines
}

func renderTroubleshooting(tips []string, width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return TroubleshootingBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
