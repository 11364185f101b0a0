// Package compare decides whether a CRM record is stale relative to freshly
// fetched LinkedIn data.
package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/contact-enricher/internal/llm"
	"github.com/jonathan/contact-enricher/internal/prompts"
	"github.com/jonathan/contact-enricher/internal/retry"
	"github.com/jonathan/contact-enricher/internal/schemas"
	"github.com/jonathan/contact-enricher/internal/types"
)

// DetectPolicy retries the whole call-and-parse sequence, so a response that
// fails JSON extraction is reattempted the same way a network error is.
var DetectPolicy = retry.Policy{
	MaxAttempts: 2,
	Delay:       30 * time.Second,
}

// verdictSchema constrains the model's comparison output before decoding.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"toUpdate": {"type": "boolean"},
		"reason": {"type": "string"}
	},
	"required": ["toUpdate", "reason"]
}`

// currentSummary mirrors the field names the comparison prompt has always
// used for the fresh profile side.
type currentSummary struct {
	Name        string             `json:"name"`
	Description string             `json:"desc"`
	Company     string             `json:"company"`
	Title       string             `json:"title"`
	RecentPosts []types.RecentPost `json:"recentPosts"`
}

// Detector runs the old-vs-current profile comparison through an LLM.
type Detector struct {
	client llm.Client
	policy retry.Policy
	model  string
}

// NewDetector builds a detector on top of an LLM client.
func NewDetector(client llm.Client) *Detector {
	return &Detector{
		client: client,
		policy: DetectPolicy,
		model:  llm.DefaultModel,
	}
}

// WithPolicy overrides the retry policy; used by tests.
func (d *Detector) WithPolicy(policy retry.Policy) *Detector {
	d.policy = policy
	return d
}

// Detect compares the CRM snapshot against the fetched profile and recent
// posts and returns the model's verdict, reason included.
func (d *Detector) Detect(ctx context.Context, old types.OldProfile, profile types.FetchedProfile, recentPosts []types.RecentPost) (*types.Verdict, error) {
	old.Description = StripRichText(old.Description)
	if recentPosts == nil {
		recentPosts = []types.RecentPost{}
	}

	oldJSON, err := json.Marshal(old)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal old profile: %w", err)
	}
	currentJSON, err := json.Marshal(currentSummary{
		Name:        profile.FullName,
		Description: profile.About,
		Company:     profile.Company,
		Title:       profile.Headline,
		RecentPosts: recentPosts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current profile: %w", err)
	}

	systemPrompt := prompts.MustGet("enrichment.json", "compare-profiles")
	userPrompt := prompts.Format(prompts.MustGet("enrichment.json", "compare-profiles-user"), map[string]string{
		"OldProfile":     string(oldJSON),
		"CurrentProfile": string(currentJSON),
	})

	var verdict types.Verdict
	err = d.policy.Do(ctx, "profile comparison", func() error {
		response, genErr := d.client.GenerateText(ctx, llm.GenerateRequest{
			UserPrompt:   userPrompt,
			SystemPrompt: systemPrompt,
			Model:        d.model,
		})
		if genErr != nil {
			return genErr
		}

		payload, extractErr := llm.ExtractJSONString(response)
		if extractErr != nil {
			return extractErr
		}
		if schemaErr := schemas.ValidateJSONString(verdictSchema, payload); schemaErr != nil {
			return &llm.ParseError{
				Message:     "comparison verdict failed schema validation",
				RawResponse: response,
				Cause:       schemaErr,
			}
		}
		return json.Unmarshal([]byte(payload), &verdict)
	})
	if err != nil {
		return nil, err
	}

	return &verdict, nil
}
