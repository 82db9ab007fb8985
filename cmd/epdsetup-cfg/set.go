package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/favsoft/epdsetup/internal/credentials"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/ui"
)

var (
	setSSID      string
	setPassword  string
	setServerURL string
	noVerify     bool
	retries      int
)

// setSteps are the progress lines of the set command.
var setSteps = []string{
	"Read current credentials",
	"Validate credentials",
	"Save credentials",
	"Verify stored values",
}

// setCmd writes credentials without the wizard
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set display credentials",
	Long: `Directly set the network name, password and image server URL.

Fields that are not given keep the value the display currently stores.
When --password is omitted on a terminal, the password is prompted for
without echo; an empty answer keeps the current one. After saving, the
form is reopened to confirm the display stored exactly what was sent.`,
	Example: `  # Set all three fields
  epdsetup-cfg set --device EPD-1A2B3C4D --ssid HomeWifi --url http://images.local/feed

  # Change only the image server
  epdsetup-cfg set --device 192.168.4.1 --url http://10.0.0.5/feed --password ''`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setSSID, "ssid", "", "Wi-Fi network name")
	setCmd.Flags().StringVar(&setPassword, "password", "", "Wi-Fi password (prompted when omitted)")
	setCmd.Flags().StringVar(&setServerURL, "url", "", "Image server URL")
	setCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip verification after saving")
	setCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
}

func runSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	changes := deviceconfig.Credentials{SSID: setSSID, Password: setPassword, ServerURL: setServerURL}
	if !cmd.Flags().Changed("password") && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		changes.Password = password
	}

	d, err := target(ctx, cmd)
	if err != nil {
		return err
	}
	client := deviceconfig.NewClient(d.IP, d.Port)
	displayID(ctx, d, client)

	params := []ui.Detail{ui.D("Display", label(d))}
	if noVerify {
		params = append(params, ui.D("Verify", "skipped"))
	}
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:           "Set Credentials",
		Command:         "epdsetup-cfg set",
		Params:          params,
		StepNames:       setSteps,
		Output:          cmd.OutOrStdout(),
		Troubleshooting: troubleshooting,
	})

	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
		saved, details, err := applyCredentials(ctx, client, changes, !noVerify, retries, onStep)
		if err != nil {
			return nil, err
		}
		reg := loadRegistry()
		rememberCredentials(reg, d, saved)
		saveRegistry(reg)
		return details, nil
	})
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Wi-Fi password (empty keeps the current one): ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// applyCredentials merges changes over what the display stores, saves
// the result and optionally confirms it was stored.
func applyCredentials(ctx context.Context, c *deviceconfig.Client, changes deviceconfig.Credentials, verify bool, retries int, onStep ui.StepCallback) (deviceconfig.Credentials, []ui.Detail, error) {
	fail := func(step int, err error) (deviceconfig.Credentials, []ui.Detail, error) {
		onStep(step, "", ui.StepFailed, deviceconfig.GetShortErrorMessage(err))
		return deviceconfig.Credentials{}, nil, err
	}

	onStep(1, "", ui.StepRunning, "")
	current, err := c.OpenForm(ctx)
	if err != nil {
		return fail(1, err)
	}
	onStep(1, "", ui.StepComplete, "")

	onStep(2, "", ui.StepRunning, "")
	creds := changes.Merge(current)
	if errs := deviceconfig.ValidateCredentials(creds); len(errs) > 0 {
		// leave the display's form as it was
		_ = c.CancelForm(ctx)
		return fail(2, deviceconfig.NewValidationError(deviceconfig.FormatValidationErrors(errs), errs[0]))
	}
	changed := 0
	for _, f := range credentials.Fields {
		if creds.Get(f) != current.Get(f) {
			changed++
		}
	}
	onStep(2, "", ui.StepComplete, fmt.Sprintf("%d field(s) changed", changed))

	onStep(3, "", ui.StepRunning, "")
	if _, err := c.SubmitCredentials(ctx, creds); err != nil {
		return fail(3, err)
	}
	onStep(3, "", ui.StepComplete, "")

	details := []ui.Detail{
		ui.D("Network Name", creds.SSID),
		ui.D("Password", deviceconfig.MaskPassword(creds.Password)),
		ui.D("Image Server", creds.ServerURL),
	}

	if !verify {
		onStep(4, "", ui.StepSkipped, "--no-verify")
		return creds, details, nil
	}

	onStep(4, "", ui.StepRunning, "")
	result := c.VerifyCredentials(ctx, creds, &deviceconfig.VerificationOptions{
		MaxRetries:            retries,
		InitialDelay:          200 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	})
	if !result.Success {
		err := result.Error
		if err == nil {
			err = fmt.Errorf("display stored different values: %s", strings.Join(result.Mismatches, "; "))
		}
		return fail(4, err)
	}
	onStep(4, "", ui.StepComplete, fmt.Sprintf("%d attempt(s)", result.Attempts))

	return creds, append(details, ui.D("Verified", fmt.Sprintf("after %d attempt(s)", result.Attempts))), nil
}
