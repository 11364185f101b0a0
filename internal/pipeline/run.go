// Package pipeline provides the high-level orchestration for a contact
// enrichment run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/contact-enricher/internal/airtable"
	"github.com/jonathan/contact-enricher/internal/compare"
	"github.com/jonathan/contact-enricher/internal/config"
	"github.com/jonathan/contact-enricher/internal/db"
	"github.com/jonathan/contact-enricher/internal/describe"
	"github.com/jonathan/contact-enricher/internal/linkedin"
	"github.com/jonathan/contact-enricher/internal/llm"
	"github.com/jonathan/contact-enricher/internal/notify"
	"github.com/jonathan/contact-enricher/internal/observability"
	"github.com/jonathan/contact-enricher/internal/types"
)

// ProgressEvent represents a progress update during an enrichment run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds per-run configuration
type RunOptions struct {
	Verbose    bool
	Now        time.Time // zero means time.Now; injected by tests
	OnProgress ProgressCallback
}

// Result summarizes what a run did. Exactly one of Skipped, an unchanged
// verdict, or Updated describes the outcome.
type Result struct {
	RunID       uuid.UUID      `json:"run_id"`
	RecordID    string         `json:"record_id"`
	Skipped     bool           `json:"skipped"`
	SkipReason  string         `json:"skip_reason,omitempty"`
	Verdict     *types.Verdict `json:"verdict,omitempty"`
	Description string         `json:"description,omitempty"`
	Updated     bool           `json:"updated"`
	Notified    bool           `json:"notified"`
}

type profileSource interface {
	FetchProfile(ctx context.Context, profileURL string) (*types.ProfileResponse, error)
	FetchPosts(ctx context.Context, profileURL string) (*types.PostsResponse, error)
}

type stalenessDetector interface {
	Detect(ctx context.Context, old types.OldProfile, profile types.FetchedProfile, recentPosts []types.RecentPost) (*types.Verdict, error)
}

type descriptionWriter interface {
	Describe(ctx context.Context, profile types.FetchedProfile) (string, error)
}

type recordUpdater interface {
	UpdateDescription(ctx context.Context, recordID, description string) error
}

type workflowNotifier interface {
	Resume(ctx context.Context, recordID, finalMemo string) error
}

// Pipeline wires the enrichment steps together. The zero value is not
// usable; build one with New or assemble the fields directly in tests.
type Pipeline struct {
	Source   profileSource
	Detector stalenessDetector
	Writer   descriptionWriter
	Updater  recordUpdater
	Notifier workflowNotifier // nil disables the workflow-resume callback
	Database *db.DB           // nil disables run auditing
	Printer  *observability.Printer
}

// New assembles a pipeline from configuration. The returned cleanup func
// closes the LLM client and database pool and must be called when done.
func New(ctx context.Context, cfg config.Config) (*Pipeline, func(), error) {
	llmAPIKey := cfg.OpenRouterAPIKey
	if cfg.Provider == string(llm.ProviderGemini) {
		llmAPIKey = cfg.GeminiAPIKey
	}
	llmClient, err := llm.NewClient(ctx, &llm.Config{
		Provider: llm.Provider(cfg.Provider),
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.Model,
	}, llmAPIKey)
	if err != nil {
		return nil, nil, err
	}

	source, err := linkedin.NewClient(linkedin.Options{
		APIKey:  cfg.RapidAPIKey,
		BaseURL: cfg.LinkedInBaseURL,
	})
	if err != nil {
		llmClient.Close()
		return nil, nil, err
	}

	updater, err := airtable.NewClient(airtable.Options{
		APIKey:  cfg.AirtableAPIKey,
		BaseID:  cfg.AirtableBaseID,
		TableID: cfg.AirtableTableID,
	})
	if err != nil {
		llmClient.Close()
		return nil, nil, err
	}

	p := &Pipeline{
		Source:   source,
		Detector: compare.NewDetector(llmClient),
		Writer:   describe.NewGenerator(llmClient),
		Updater:  updater,
		Printer:  observability.NewPrinter(os.Stdout),
	}

	if cfg.NotifyOnComplete {
		p.Notifier = notify.NewNotifier(notify.Options{WebhookURL: cfg.WebhookURL})
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without run auditing...\n")
		} else {
			p.Database = database
		}
	}

	cleanup := func() {
		_ = llmClient.Close()
		p.Database.Close()
	}
	return p, cleanup, nil
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   runID.String(),
			Content: content,
		})
	}
}

// Run executes the enrichment flow for one CRM record.
//
// Records without a LinkedIn URL and records whose profile is judged current
// both end the run without error; only transport and model failures are
// reported as errors.
func (p *Pipeline) Run(ctx context.Context, record *types.TriggerRecord, opts RunOptions) (*Result, error) {
	if p.Printer == nil {
		p.Printer = observability.NewPrinter(os.Stdout)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := &Result{RunID: uuid.New(), RecordID: record.ID}

	if record.Fields.LinkedIn == "" {
		fmt.Printf("Record %s has no LinkedIn URL, nothing to enrich.\n", record.ID)
		result.Skipped = true
		result.SkipReason = "no LinkedIn URL on record"
		return result, nil
	}

	if opts.Verbose {
		p.Printer.PrintTriggerRecord(record)
	}
	p.startAudit(ctx, result.RunID, record)

	escapedURL := linkedin.EscapeProfileURL(record.Fields.LinkedIn)

	fmt.Printf("Step 1/6: Fetching LinkedIn profile for %s...\n", record.Fields.Name)
	profileResp, err := p.Source.FetchProfile(ctx, escapedURL)
	if err != nil {
		return result, p.failRun(ctx, result, fmt.Errorf("profile fetch failed: %w", err))
	}
	profile := profileResp.Data
	if opts.Verbose {
		p.Printer.PrintProfile(&profile)
	}
	emitProgress(&opts, result.RunID, "profile", fmt.Sprintf("Fetched profile for %s", profile.FullName), nil)

	// The posts fetch waits for the profile fetch; the upstream scraper
	// throttles concurrent calls for the same profile.
	fmt.Printf("Step 2/6: Fetching recent posts...\n")
	postsResp, err := p.Source.FetchPosts(ctx, escapedURL)
	if err != nil {
		return result, p.failRun(ctx, result, fmt.Errorf("posts fetch failed: %w", err))
	}

	fmt.Printf("Step 3/6: Filtering posts to the last week...\n")
	recentPosts := linkedin.FilterRecentPosts(postsResp.Data, now)
	if opts.Verbose {
		p.Printer.PrintRecentPosts(recentPosts)
	}

	fmt.Printf("Step 4/6: Comparing against CRM snapshot...\n")
	verdict, err := p.Detector.Detect(ctx, record.OldProfile(), profile, recentPosts)
	if err != nil {
		return result, p.failRun(ctx, result, fmt.Errorf("profile comparison failed: %w", err))
	}
	result.Verdict = verdict
	if opts.Verbose {
		p.Printer.PrintVerdict(verdict)
	}
	emitProgress(&opts, result.RunID, "verdict", verdict.Reason, verdict)

	if !verdict.ToUpdate {
		fmt.Printf("Profile is current, leaving record unchanged: %s\n", verdict.Reason)
		p.completeAudit(ctx, result, "unchanged", "")
		return result, nil
	}

	fmt.Printf("Step 5/6: Generating new description...\n")
	description, err := p.Writer.Describe(ctx, profile)
	if err != nil {
		return result, p.failRun(ctx, result, fmt.Errorf("description generation failed: %w", err))
	}
	result.Description = description
	if opts.Verbose {
		p.Printer.PrintFinalDescription(description)
	}

	fmt.Printf("Step 6/6: Updating CRM record %s...\n", record.ID)
	if err := p.Updater.UpdateDescription(ctx, record.ID, description); err != nil {
		return result, p.failRun(ctx, result, fmt.Errorf("record update failed: %w", err))
	}
	result.Updated = true
	emitProgress(&opts, result.RunID, "updated", "Updated CRM description", nil)

	if p.Notifier != nil {
		if err := p.Notifier.Resume(ctx, record.ID, description); err != nil {
			// The record is already updated; a lost callback is reported but
			// does not undo the run.
			fmt.Printf("Warning: workflow resume failed: %v\n", err)
		} else {
			result.Notified = true
		}
	}

	p.completeAudit(ctx, result, "updated", description)
	fmt.Printf("Done! Record %s enriched.\n", record.ID)
	return result, nil
}

// startAudit inserts the audit row; auditing is best effort and failures
// only warn.
func (p *Pipeline) startAudit(ctx context.Context, runID uuid.UUID, record *types.TriggerRecord) {
	if p.Database == nil {
		return
	}
	if err := p.Database.StartRun(ctx, runID, record.ID, record.Fields.LinkedIn); err != nil {
		fmt.Printf("Warning: Failed to record run start: %v\n", err)
	}
}

func (p *Pipeline) completeAudit(ctx context.Context, result *Result, status, description string) {
	if p.Database == nil {
		return
	}
	var toUpdate *bool
	var reason string
	if result.Verdict != nil {
		toUpdate = &result.Verdict.ToUpdate
		reason = result.Verdict.Reason
	}
	if err := p.Database.CompleteRun(ctx, result.RunID, status, toUpdate, reason, description, ""); err != nil {
		fmt.Printf("Warning: Failed to record run completion: %v\n", err)
	}
}

func (p *Pipeline) failRun(ctx context.Context, result *Result, runErr error) error {
	if p.Database != nil {
		var toUpdate *bool
		var reason string
		if result.Verdict != nil {
			toUpdate = &result.Verdict.ToUpdate
			reason = result.Verdict.Reason
		}
		if err := p.Database.CompleteRun(ctx, result.RunID, "failed", toUpdate, reason, "", runErr.Error()); err != nil {
			fmt.Printf("Warning: Failed to record run failure: %v\n", err)
		}
	}
	return runErr
}
