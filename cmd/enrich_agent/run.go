package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-enricher/internal/config"
	"github.com/jonathan/contact-enricher/internal/pipeline"
	"github.com/jonathan/contact-enricher/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Enrich a single CRM record end-to-end",
	Long: `Runs the enrichment flow for one record: fetch LinkedIn profile and posts -> filter recent posts -> compare against the CRM snapshot -> regenerate the description if stale -> write back to Airtable.

The record is read from --record (Airtable record JSON, "-" for stdin) or assembled from the --record-id/--linkedin-url flags. Configuration can be loaded from a JSON file using --config; command-line arguments override config file values.`,
	RunE: runEnrichCmd,
}

var (
	runConfigPath  string
	runRecordPath  string
	runRecordID    string
	runLinkedInURL string
	runName        string
	runTitle       string
	runCompany     string
	runDescription string
	runProvider    string
	runModel       string
	runDatabaseURL string
	runWebhookURL  string
	runNotify      bool
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runRecordPath, "record", "r", "", `Path to the trigger record JSON ("-" reads stdin; mutually exclusive with --linkedin-url)`)
	runCommand.Flags().StringVar(&runRecordID, "record-id", "", "Airtable record id for ad-hoc runs")
	runCommand.Flags().StringVarP(&runLinkedInURL, "linkedin-url", "l", "", "LinkedIn profile URL for ad-hoc runs (mutually exclusive with --record)")
	runCommand.Flags().StringVarP(&runName, "name", "n", "", "Contact name for ad-hoc runs")
	runCommand.Flags().StringVar(&runTitle, "title", "", "Contact title for ad-hoc runs")
	runCommand.Flags().StringVar(&runCompany, "company", "", "Contact company for ad-hoc runs")
	runCommand.Flags().StringVar(&runDescription, "description", "", "Existing CRM description for ad-hoc runs")
	runCommand.Flags().StringVar(&runProvider, "provider", "", "LLM provider: openrouter or gemini (default openrouter)")
	runCommand.Flags().StringVar(&runModel, "model", "", "Model identifier (default openai/gpt-4o)")
	runCommand.Flags().BoolVar(&runNotify, "notify", false, "Resume the upstream workflow via webhook after a successful update")
	runCommand.Flags().StringVar(&runWebhookURL, "webhook", "", "Workflow-resume webhook URL (optional, defaults to WEBHOOK_URL env var)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for run auditing
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// loadMergedConfig layers a config file (optional) over environment values.
func loadMergedConfig(path string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loadedCfg, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", path)
		}
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	return cfg, nil
}

func runEnrichCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(runConfigPath, runVerbose)
	if err != nil {
		return err
	}

	// CLI overrides (only when the flag was explicitly set)
	if cmd.Flags().Changed("provider") {
		cfg.Provider = runProvider
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("webhook") {
		cfg.WebhookURL = runWebhookURL
	}
	if cmd.Flags().Changed("notify") {
		cfg.NotifyOnComplete = runNotify
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	record, err := resolveRecord()
	if err != nil {
		return err
	}

	p, cleanup, err := pipeline.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.Run(ctx, record, pipeline.RunOptions{Verbose: cfg.Verbose})
	if err != nil {
		return err
	}
	if result.Skipped {
		fmt.Printf("Skipped: %s\n", result.SkipReason)
	}
	return nil
}

// resolveRecord builds the trigger record from --record or the ad-hoc flags.
func resolveRecord() (*types.TriggerRecord, error) {
	if runRecordPath != "" && runLinkedInURL != "" {
		return nil, fmt.Errorf("--record and --linkedin-url are mutually exclusive; provide only one")
	}

	if runRecordPath != "" {
		var data []byte
		var err error
		if runRecordPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(runRecordPath)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		return types.DecodeTriggerRecord(data)
	}

	if runLinkedInURL == "" {
		return nil, fmt.Errorf("either --record or --linkedin-url must be provided")
	}

	record := &types.TriggerRecord{
		ID: runRecordID,
		Fields: types.TriggerFields{
			Name:        runName,
			Title:       runTitle,
			Description: runDescription,
			LinkedIn:    runLinkedInURL,
		},
	}
	if runCompany != "" {
		record.Fields.Companies = []string{runCompany}
	}
	return record, nil
}
