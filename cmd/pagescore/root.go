package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagescore/internal/log"
)

// NewRootCmd creates the root command for pagescore.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagescore",
		Short: "Page quality analysis for content sites",
		Long: `pagescore inspects rendered content pages, extracts structural and
metadata signals, classifies deficiencies by severity and computes a
0-100 health score per page.

Pages are read from a YAML or JSON export. Scores are stored in a local
history so each run reports how every page moved since the last one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", log.FormatText, "Log format: text or json")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
