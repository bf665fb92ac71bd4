package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macroeconlab/macro-report-be/internal/core/spec"
)

var presetsFile string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List quick-add chart presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := spec.BuiltinPresets()
		if presetsFile != "" {
			loaded, err := spec.LoadPresets(presetsFile)
			if err != nil {
				return err
			}
			reg = loaded
		}

		for _, name := range reg.Names() {
			cs := reg[name]
			fmt.Printf("%-16s %s [%s, %s]\n", name, cs.PageTitle, cs.Transform, cs.Frequency)
		}
		return nil
	},
}

func init() {
	presetsCmd.Flags().StringVar(&presetsFile, "file", "", "load presets from a YAML file instead of the builtins")
}
