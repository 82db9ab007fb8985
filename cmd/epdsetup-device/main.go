// Epdsetup-device runs the setup webserver of an e-paper display.
//
// On boot it opens the configuration flash, decides whether the display
// needs configuring, and if so serves the setup pages until the operator
// switches it to display mode. The configuration flash is emulated by an
// image file, and the configuration jumper by a flag.
//
// Usage:
//
//	epdsetup-device serve [flags]
//	epdsetup-device inspect --flash <image>
//
// See 'epdsetup-device --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/favsoft/epdsetup/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epdsetup-device",
	Short: "E-paper display setup webserver",
	Long: `Device-side setup webserver for e-paper displays.

While the display is in configuring mode it serves a small set of HTML
pages on port 80 where the operator enters the Wi-Fi network name,
password and image server URL. Values are kept in a single record in
the configuration flash and survive power loss mid-write.

For configuring displays from another machine, use 'epdsetup-cfg'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("epdsetup-device %s (commit: %s, record format %d)\n", version.Version, version.Commit, version.RecordFormat)
	},
}
