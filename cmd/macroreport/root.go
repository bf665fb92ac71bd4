package main

import (
	"github.com/spf13/cobra"

	"github.com/macroeconlab/macro-report-be/internal/shared/utils"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "macroreport",
	Short: "Chart-driven macroeconomic PDF reports from FRED data",
	Long: "macroreport pulls economic time series from FRED, applies level / YoY /\n" +
		"QoQ-SAAR transforms, renders each chart, and assembles one multi-page PDF.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.Version = version
}
