package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/discovery"
	"github.com/favsoft/epdsetup/internal/storage"
	"github.com/favsoft/epdsetup/internal/ui"
	"github.com/favsoft/epdsetup/internal/wizard/tui"
)

// Configuration command flags
var (
	deviceRef    string
	devicePort   int
	scanTimeout  int
	outputFormat string
)

func init() {
	// Common flags for display commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceRef, "device", "", "Display ID, nickname or address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", discovery.DefaultPort, "Display HTTP port")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(displayCmd)
}

// target resolves the --device flag for cmd.
func target(ctx context.Context, cmd *cobra.Command) (*discovery.Device, error) {
	reg := loadRegistry()
	portSet := cmd.Flags().Changed("port")
	return resolveTarget(ctx, reg, deviceRef, devicePort, portSet, cmd.OutOrStdout())
}

// scanCmd discovers displays on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for displays in configuring mode",
	Long: `Scan for displays using mDNS/DNS-SD discovery.

Displays advertise their setup webserver while in configuring mode. Every
display found is remembered in the registry so later commands can address
it by ID or nickname.`,
	Example: `  # Scan for 10 seconds (default)
  epdsetup-cfg scan

  # Quick 3-second scan
  epdsetup-cfg scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Display Scan", "epdsetup-cfg scan", ui.D("Timeout", fmt.Sprintf("%ds", scanTimeout)))
	p.PrintPleaseWait("Listening for mDNS advertisements", fmt.Sprintf("up to %ds", scanTimeout))

	devices, err := scanFunc(cmd.Context(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		p.PrintFailure("Scan failed", err, []string{"Check that multicast traffic is allowed on this network"})
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		p.PrintWarning("No displays found",
			ui.D("Tip", "Ensure the display is powered on and in configuring mode"),
			ui.D("Tip", "Verify you're connected to the display's setup network"),
			ui.D("Tip", "Try increasing --timeout for slower networks"),
			ui.D("Tip", "Use --device to specify an address if discovery fails"),
		)
		return nil
	}

	reg := loadRegistry()
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		reg.UpdateDeviceLastSeen(d.ID, d.IP, d.Port, d.Status.String())
		nickname := ""
		if known := reg.GetDevice(d.ID); known != nil {
			nickname = known.Nickname
		}
		rows = append(rows, []string{d.ID, nickname, fmt.Sprintf("%s:%d", d.IP, d.Port), d.Status.String()})
	}
	saveRegistry(reg)

	p.PrintTable([]string{"ID", "NICKNAME", "ADDRESS", "STATUS"}, rows)
	p.Newline()
	p.Println(fmt.Sprintf("Found %d display(s). Use 'epdsetup-cfg show --device <id>' to view credentials.", len(devices)))
	return nil
}

// showCmd displays the stored credentials
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show display credentials",
	Long: `Display the credentials a display currently stores.

The setup form is opened to read the stored values and then cancelled, so
nothing on the display changes. The password is masked.`,
	Example: `  # Show credentials with auto-discovery
  epdsetup-cfg show

  # Show credentials of a known display
  epdsetup-cfg show --device EPD-1A2B3C4D

  # JSON output for scripting
  epdsetup-cfg show --device 192.168.4.1 --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

// shownCredentials is the JSON form of show.
type shownCredentials struct {
	ID          string `json:"id,omitempty"`
	Address     string `json:"address"`
	SSID        string `json:"ssid"`
	PasswordSet bool   `json:"password_set"`
	ServerURL   string `json:"server_url"`
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := target(ctx, cmd)
	if err != nil {
		return err
	}

	client := deviceconfig.NewClient(d.IP, d.Port)
	creds, err := client.OpenForm(ctx)
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w\n\n%s", err, deviceconfig.GetTroubleshootingHint(err))
	}
	if err := client.CancelForm(ctx); err != nil {
		return fmt.Errorf("failed to close the form: %w", err)
	}
	displayID(ctx, d, client)

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "compact":
		fmt.Fprintln(out, creds.String())
	case "json":
		data, err := json.MarshalIndent(shownCredentials{
			ID:          d.ID,
			Address:     fmt.Sprintf("%s:%d", d.IP, d.Port),
			SSID:        creds.SSID,
			PasswordSet: creds.Password != "",
			ServerURL:   creds.ServerURL,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "detailed":
		fallthrough
	default:
		p := ui.NewPrinter(out)
		p.PrintHeader("Display Credentials", "epdsetup-cfg show", ui.D("Display", label(d)))
		p.Println(deviceconfig.FormatCredentials(creds))
	}
	return nil
}

// wizardCmd launches the interactive TUI wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive configuration wizard",
	Long: `Launch an interactive TUI wizard for display configuration.

The wizard provides a guided interface for:
- Discovering displays in configuring mode
- Entering the network name, password and image server URL
- Saving and verifying the credentials
- Switching the display to display mode

This is the recommended way to configure displays for most users.`,
	Example: `  # Launch wizard with auto-discovery
  epdsetup-cfg wizard
  # Or simply (wizard is default):
  epdsetup-cfg

  # Launch wizard for a specific display
  epdsetup-cfg wizard --device 192.168.4.1`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runWizard(cmd *cobra.Command, args []string) error {
	reg := loadRegistry()

	var start *discovery.Device
	if deviceRef != "" {
		d, err := resolveTarget(cmd.Context(), reg, deviceRef, devicePort, cmd.Flags().Changed("port"), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		start = d
	}

	opts := tui.Options{
		ScanTimeout: time.Duration(scanTimeout) * time.Second,
		OnSaved: func(d *discovery.Device, creds deviceconfig.Credentials) {
			rememberCredentials(reg, d, creds)
			saveRegistry(reg)
		},
	}

	p := tea.NewProgram(tui.NewAppModel(opts, start), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}
	return nil
}

// resetCmd performs a master reset
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the stored credentials",
	Long: `Perform a master reset on a display.

The network name, password and image server URL are erased and the display
stays in configuring mode. The reset must be confirmed by typing the
confirmation phrase.`,
	Example: `  epdsetup-cfg reset --device EPD-1A2B3C4D`,
	RunE:    runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := target(ctx, cmd)
	if err != nil {
		return err
	}

	client := deviceconfig.NewClient(d.IP, d.Port)
	displayID(ctx, d, client)

	if !ui.MasterResetConfirmation(os.Stdin, cmd.OutOrStdout(), label(d)) {
		return nil
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:           "Master Reset",
		Command:         "epdsetup-cfg reset",
		Params:          []ui.Detail{ui.D("Display", label(d))},
		StepNames:       []string{"Erase credentials"},
		Output:          cmd.OutOrStdout(),
		Troubleshooting: troubleshooting,
	})
	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
		onStep(1, "", ui.StepRunning, "")
		if err := client.MasterReset(ctx); err != nil {
			onStep(1, "", ui.StepFailed, deviceconfig.GetShortErrorMessage(err))
			return nil, err
		}
		onStep(1, "", ui.StepComplete, "")

		reg := loadRegistry()
		remember(reg, d, storage.DefaultValues)
		if known := reg.GetDevice(d.ID); known != nil {
			known.SSID, known.ServerURL = "", ""
		}
		saveRegistry(reg)
		return []ui.Detail{ui.D("Status", storage.DefaultValues.String())}, nil
	})
}

// displayCmd switches the display to display mode
var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Switch the display to display mode",
	Long: `Leave configuring mode and start showing images.

The display only offers this once the network name, password and image
server URL are all stored. The setup webserver stops afterwards.`,
	Example: `  epdsetup-cfg display --device EPD-1A2B3C4D`,
	RunE:    runDisplay,
}

func runDisplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := target(ctx, cmd)
	if err != nil {
		return err
	}

	client := deviceconfig.NewClient(d.IP, d.Port)
	displayID(ctx, d, client)

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:           "Display Mode",
		Command:         "epdsetup-cfg display",
		Params:          []ui.Detail{ui.D("Display", label(d))},
		StepNames:       []string{"Enter display mode"},
		Output:          cmd.OutOrStdout(),
		Troubleshooting: troubleshooting,
	})
	return runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
		onStep(1, "", ui.StepRunning, "")
		if err := client.EnterDisplayMode(ctx); err != nil {
			onStep(1, "", ui.StepFailed, deviceconfig.GetShortErrorMessage(err))
			return nil, err
		}
		onStep(1, "", ui.StepComplete, "")

		reg := loadRegistry()
		remember(reg, d, storage.CredentialsSet)
		saveRegistry(reg)
		return []ui.Detail{ui.D("Next", "the setup webserver has stopped")}, nil
	})
}
