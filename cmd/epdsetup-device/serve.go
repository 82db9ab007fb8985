package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/favsoft/epdsetup/internal/config"
	"github.com/favsoft/epdsetup/internal/logging"
)

var (
	configPath   string
	flashImage   string
	servePort    int
	configJumper bool
	logLevel     string
	noAdvertise  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Boot the display and serve the setup pages",
	Long: `Boot the display from its configuration flash.

If the display has no credentials yet, or the configuration jumper is set,
the setup webserver runs until the operator chooses "Start display" on the
home page. Otherwise the command reports the stored status and exits.

Examples:
  # Serve on port 8080 with a persistent flash image
  epdsetup-device serve --flash display.img --port 8080

  # Force configuring mode on an already configured display
  epdsetup-device serve --flash display.img --config-jumper`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Settings file (default: ~/.config/epdsetup/device.yaml)")
	serveCmd.Flags().StringVar(&flashImage, "flash", "", "Flash image file (created when missing)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 80, "HTTP port")
	serveCmd.Flags().BoolVar(&configJumper, "config-jumper", false, "Force configuring mode")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	serveCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not advertise the webserver over mDNS")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := logging.Initialize(settings.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	d, err := boot(settings)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.run(ctx)
}

// loadSettings reads the settings file and applies explicitly set flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("flash") {
		settings.Flash.Image = flashImage
	}
	if flags.Changed("port") {
		settings.Server.Port = servePort
	}
	if flags.Changed("config-jumper") {
		settings.Device.ConfigJumper = configJumper
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if flags.Changed("no-advertise") {
		settings.Device.Advertise = !noAdvertise
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
