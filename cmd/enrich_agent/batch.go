package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/contact-enricher/internal/pipeline"
	"github.com/jonathan/contact-enricher/internal/types"
)

var batchCommand = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a batch of CRM records",
	Long: `Runs the enrichment flow for every record in a JSON array file. Records run concurrently up to --concurrency; within each record the steps stay strictly sequential.

A record that fails does not stop the others; failures are reported at the end.`,
	RunE: runBatchCmd,
}

var (
	batchConfigPath  string
	batchRecordsPath string
	batchConcurrency int
	batchVerbose     bool
)

func init() {
	batchCommand.Flags().StringVar(&batchConfigPath, "config", "", "Path to config.json file")
	batchCommand.Flags().StringVarP(&batchRecordsPath, "records", "r", "", "Path to a JSON array of trigger records (required)")
	batchCommand.Flags().IntVar(&batchConcurrency, "concurrency", 3, "Maximum records enriched at once")
	batchCommand.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "Print detailed debug information")
	_ = batchCommand.MarkFlagRequired("records")

	rootCmd.AddCommand(batchCommand)
}

func runBatchCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(batchConfigPath, batchVerbose)
	if err != nil {
		return err
	}
	cfg.Verbose = batchVerbose
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(batchRecordsPath)
	if err != nil {
		return fmt.Errorf("failed to read records file: %w", err)
	}
	var records []types.TriggerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse records file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("records file contains no records")
	}

	p, cleanup, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	concurrency := batchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var updated, unchanged, skipped int
	var failures []string

	for i := range records {
		record := &records[i]
		g.Go(func() error {
			result, err := p.Run(gCtx, record, pipeline.RunOptions{Verbose: cfg.Verbose})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures = append(failures, fmt.Sprintf("%s: %v", record.ID, err))
			case result.Skipped:
				skipped++
			case result.Updated:
				updated++
			default:
				unchanged++
			}
			// Individual failures are collected, not propagated, so the
			// remaining records still run.
			return nil
		})
	}

	_ = g.Wait()

	fmt.Printf("\nBatch complete: %d updated, %d unchanged, %d skipped, %d failed\n",
		updated, unchanged, skipped, len(failures))
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "  failed %s\n", failure)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d records failed", len(failures), len(records))
	}
	return nil
}
