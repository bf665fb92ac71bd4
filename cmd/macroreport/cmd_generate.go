package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/macroeconlab/macro-report-be/internal/config"
	"github.com/macroeconlab/macro-report-be/internal/core/narrative"
	"github.com/macroeconlab/macro-report-be/internal/core/pipeline"
	"github.com/macroeconlab/macro-report-be/internal/core/series"
	"github.com/macroeconlab/macro-report-be/internal/core/spec"
)

var (
	generateSpecPath  string
	generateOutPath   string
	generateStart     string
	generateDataOut   string
	generateWorkers   int
	generateNarrative bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report PDF from a chart specification",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateSpecPath, "spec", "", "path to chart specification JSON (required)")
	generateCmd.Flags().StringVar(&generateOutPath, "out", "", "output PDF file (required)")
	generateCmd.Flags().StringVar(&generateStart, "start", "1990-01-01", "start date for data pulls (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&generateDataOut, "data-out", "", "also write a data appendix (.csv or .xlsx)")
	generateCmd.Flags().IntVar(&generateWorkers, "workers", 0, "concurrent chart workers (default from REPORT_WORKERS, else sequential)")
	generateCmd.Flags().BoolVar(&generateNarrative, "narrative", false, "generate per-chart commentary via OpenAI")
	_ = generateCmd.MarkFlagRequired("spec")
	_ = generateCmd.MarkFlagRequired("out")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()

	rs, err := spec.Load(generateSpecPath)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", generateStart)
	if err != nil {
		return fmt.Errorf("invalid --start date %q: %w", generateStart, err)
	}

	workers := cfg.Workers
	if generateWorkers > 0 {
		workers = generateWorkers
	}

	opts := pipeline.Options{
		Workers:        workers,
		Start:          &start,
		DataExportPath: generateDataOut,
	}
	if generateNarrative {
		if cfg.OpenAIKey == "" {
			return fmt.Errorf("--narrative requires OPENAI_API_KEY")
		}
		opts.Narrator = narrative.NewOpenAIGenerator(cfg.OpenAIKey, cfg.LLMModel)
		log.Info().Str("provider", opts.Narrator.GetProviderName()).Msg("📝 Narrative generation enabled")
	}

	orch := pipeline.NewOrchestrator(series.NewFREDFetcher(cfg.FREDBaseURL), opts)
	outcome, doc, err := orch.Run(cmd.Context(), rs)

	printSummary(outcome)

	if err != nil {
		if errors.Is(err, pipeline.ErrNoUsableCharts) {
			return fmt.Errorf("no charts were successfully generated, cannot create PDF")
		}
		return err
	}

	if err := os.WriteFile(generateOutPath, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	log.Info().Str("path", generateOutPath).Int("charts", outcome.Succeeded).Msg("Wrote report")

	// Partial failure still exits 0; the skip list above is the warning.
	return nil
}

func printSummary(outcome *series.RunOutcome) {
	if outcome == nil {
		return
	}
	fmt.Printf("Run %s: %d/%d charts succeeded\n", outcome.RunID, outcome.Succeeded, outcome.Total)
	for _, f := range outcome.Failures {
		fmt.Printf("  skipped %q (%s): %s\n", f.Title, f.Key, f.Reason)
	}
}
