package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/boopathydreams/capnpay-upi/internal/launch"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "upictl",
	Short: "Inspect UPI QR payloads and build payment deep links",
	Long: `upictl is the command-line companion to the scan service. It decodes QR
payloads exactly the way the app does, builds launchable payment links from
them and can hand a link to an installed handler app.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Launch registry YAML (default: built-in app order)")
	rootCmd.AddCommand(parseCmd, buildCmd, planCmd, openCmd)
}

func loadRegistry() (launch.Registry, error) {
	return launch.LoadRegistry(registryPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
