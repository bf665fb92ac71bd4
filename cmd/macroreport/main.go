package main

import (
	"fmt"
	"os"

	"github.com/macroeconlab/macro-report-be/internal/shared/utils"
)

func main() {
	utils.InitLogger()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
