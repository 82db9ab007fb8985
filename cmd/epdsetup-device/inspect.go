package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/favsoft/epdsetup/internal/config"
	"github.com/favsoft/epdsetup/internal/deviceconfig"
	"github.com/favsoft/epdsetup/internal/flash"
	"github.com/favsoft/epdsetup/internal/storage"
	"github.com/favsoft/epdsetup/internal/ui"
)

var (
	inspectImage  string
	inspectConfig string
	showPassword  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the configuration record of a flash image",
	Long: `Read the configuration record from a flash image without modifying it.

Prints the status, the stored credentials and the most recent error and log
codes, oldest first. The flash geometry comes from the settings file.

Example:
  epdsetup-device inspect --flash display.img`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectImage, "flash", "", "Flash image file (required)")
	inspectCmd.Flags().StringVar(&inspectConfig, "config", "", "Settings file providing the flash geometry")
	inspectCmd.Flags().BoolVar(&showPassword, "show-password", false, "Print the password in clear text")
	inspectCmd.MarkFlagRequired("flash")
}

func runInspect(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(inspectConfig)
	if err != nil {
		return err
	}
	if _, err := os.Stat(inspectImage); err != nil {
		return fmt.Errorf("flash image not found: %w", err)
	}

	// existing images are only read
	dev, err := flash.OpenFile(inspectImage, settings.Geometry())
	if err != nil {
		return err
	}
	defer dev.Close()

	rec, err := storage.ReadRecord(dev)
	if err != nil {
		return err
	}
	return printRecord(cmd.OutOrStdout(), inspectImage, rec, showPassword)
}

func printRecord(w io.Writer, image string, rec storage.Record, reveal bool) error {
	p := ui.NewPrinter(w)
	p.PrintHeader("Configuration Record", "epdsetup-device inspect", ui.D("Image", image))

	if !rec.Status.Valid() {
		p.PrintWarning("No valid record",
			ui.D("Status", rec.Status.String()),
			ui.D("Note", "the record is formatted on the next serve"),
		)
		return nil
	}

	password := deviceconfig.MaskPassword(rec.Password)
	if reveal {
		password = rec.Password
	}

	details := []ui.Detail{
		ui.D("Status", rec.Status.String()),
		ui.D("SSID", orUnset(rec.SSID)),
		ui.D("Password", password),
		ui.D("Server URL", orUnset(rec.ServerURL)),
	}
	for i, code := range rec.Errors() {
		details = append(details, ui.D(fmt.Sprintf("Error %d", i+1), code.Text()))
	}
	for i, code := range rec.Logs() {
		details = append(details, ui.D(fmt.Sprintf("Log %d", i+1), code.Text()))
	}

	if rec.Status == storage.CredentialsSet {
		p.PrintSuccess("Credentials set", details...)
	} else {
		p.PrintWarning("Credentials incomplete", details...)
	}
	return nil
}

func orUnset(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
