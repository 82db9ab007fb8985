package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one command step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// StepCallback reports a step transition to a Runner. An empty name keeps
// the name from RunnerConfig.StepNames.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)

const stepNameColumn = 40

var stepMarks = map[StepStatus]string{
	StepPending:  lipgloss.NewStyle().Foreground(MutedColor).Render("·"),
	StepRunning:  lipgloss.NewStyle().Foreground(WarningColor).Render("●"),
	StepComplete: lipgloss.NewStyle().Foreground(SuccessColor).Render(SuccessMarker),
	StepFailed:   ErrorTitleStyle.Render(FailureMarker),
	StepSkipped:  lipgloss.NewStyle().Foreground(MutedColor).Render("⊘"),
}

var stepNoteStyle = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)

type step struct {
	name   string
	status StepStatus
	note   string
}

// stepList holds the numbered steps of one Runner.
type stepList struct {
	steps []step
}

func newStepList(names []string) *stepList {
	l := &stepList{steps: make([]step, len(names))}
	for i, name := range names {
		l.steps[i].name = name
	}
	return l
}

// update records a transition of step n (1-based) and returns its line.
// Step numbers outside the list report false.
func (l *stepList) update(n int, name string, status StepStatus, note string) (string, bool) {
	if n < 1 || n > len(l.steps) {
		return "", false
	}
	s := &l.steps[n-1]
	if name != "" {
		s.name = name
	}
	s.status = status
	s.note = note
	return l.line(n), true
}

// line renders "  [n/total] name  marker (note)".
func (l *stepList) line(n int) string {
	s := l.steps[n-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] %-*s %s", n, len(l.steps), stepNameColumn, s.name, stepMarks[s.status])
	if s.note != "" {
		b.WriteString(" " + stepNoteStyle.Render("("+s.note+")"))
	}
	return b.String()
}
