// Package cli provides the sheetgraph operator commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetgraph",
		Short: "sheetgraph - spreadsheet charts for banking analytics",
		Long: `sheetgraph turns uploaded Excel workbooks into chart-ready series.

The HTTP service lives in cmd/server; these commands cover offline chart
previews and account provisioning for server mode.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.AddCommand(
		newChartCommand(),
		newUserAddCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sheetgraph %s (commit %s)\n", Version, GitCommit)
			return err
		},
	}
}
