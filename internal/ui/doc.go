// Package ui provides terminal UI components for the epdsetup-cfg CLI.
//
// The components use Lipgloss for styling and the Bubbles progress bar.
// They follow a "print and move on" pattern: output is rendered once per
// event, with no interactive loop. The interactive credentials form lives
// in package wizard.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Progress: step list with markers and an optional progress bar
//   - Result: success, warning and failure boxes with ordered details
//   - Printer: writes the above to an io.Writer
//
// Runner ties them together for multi-step commands:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Set Credentials",
//	    Command:   "epdsetup-cfg set",
//	    Params:    []ui.Detail{ui.D("Display", id)},
//	    StepNames: []string{"Submit", "Verify"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "", ui.StepComplete, "")
//	    return nil, nil
//	})
//
// Dangerous operations such as a master reset ask for ConfirmPhrase via
// ConfirmDangerousOperation before running.
package ui
