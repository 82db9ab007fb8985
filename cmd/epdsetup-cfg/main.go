// Epdsetup-cfg configures e-paper displays from an operator's machine.
//
// It finds displays in configuring mode over mDNS, reads and writes the
// Wi-Fi and image server credentials through their setup webserver, and
// switches them to display mode. Displays it has seen are remembered in
// a registry file so they can be addressed by ID or nickname.
//
// Usage:
//
//	epdsetup-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'epdsetup-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/favsoft/epdsetup/internal/logging"
	"github.com/favsoft/epdsetup/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epdsetup-cfg",
	Short: "E-paper display configuration utility",
	Long: `A standalone utility for configuring e-paper displays.

Provides display discovery, an interactive configuration wizard, and
direct commands for setting the Wi-Fi network, password and image server
of displays in configuring mode.

If no command is specified, the interactive wizard will launch automatically.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// EPDSETUP_LOG_LEVEL enables logging; the TUI owns the terminal otherwise
		return logging.InitializeFromEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("epdsetup-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
