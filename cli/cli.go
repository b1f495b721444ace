// Package cli wires Radar's command-line surface: a one-shot "scan"
// command for batch detection against a CSV target list, and a "serve"
// command that starts the async HTTP API.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute builds and runs the root command. It is main's only call into
// this package.
func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "radar",
		Short:         "Radar is a concurrent nmap-service-probes compatible service scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(scanCmd())
	root.AddCommand(serveCmd())
	return root
}
