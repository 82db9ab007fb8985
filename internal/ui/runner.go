package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes one multi-step command.
type RunnerConfig struct {
	Title     string   // e.g., "Set Credentials"
	Command   string   // e.g., "epdsetup-cfg set"
	Params    []Detail // shown in the header
	StepNames []string
	Output    io.Writer // default: os.Stdout

	// Troubleshooting returns tips for a failure; nil prints none.
	Troubleshooting func(error) []string
}

// Runner drives the header, step lines and result box of a command.
type Runner struct {
	config RunnerConfig
	steps  *stepList
	output io.Writer
	width  int
}

// NewRunner creates a runner for config.
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	return &Runner{
		config: config,
		steps:  newStepList(config.StepNames),
		output: config.Output,
		width:  width,
	}
}

// Operation is the work a Runner wraps. It reports progress through onStep
// and returns the details to show on success.
type Operation func(ctx context.Context, onStep StepCallback) ([]Detail, error)

// Run prints the header, executes op and prints its result box.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params...)
	header.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(ctx, r.onStep)
	duration := time.Since(start).Round(time.Millisecond)
	_, _ = fmt.Fprintln(r.output)

	if err != nil {
		var tips []string
		if r.config.Troubleshooting != nil {
			tips = r.config.Troubleshooting(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, tips)
		result.SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details...)
	result.AddDetail("Duration", duration.String())
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

func (r *Runner) onStep(stepNumber int, name string, status StepStatus, message string) {
	line, ok := r.steps.update(stepNumber, name, status, message)
	if !ok {
		return
	}
	switch status {
	case StepRunning:
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
	case StepComplete, StepFailed, StepSkipped:
		_, _ = fmt.Fprintln(r.output, line)
	}
}
