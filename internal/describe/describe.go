// Package describe regenerates a contact's summary description from the
// freshly fetched profile.
package describe

import (
	"context"
	"strings"

	"github.com/jonathan/contact-enricher/internal/llm"
	"github.com/jonathan/contact-enricher/internal/prompts"
	"github.com/jonathan/contact-enricher/internal/types"
)

// Generator produces the bullet-style description text. Failures propagate
// directly to the flow; this layer carries no retry of its own.
type Generator struct {
	client llm.Client
}

// NewGenerator builds a generator on top of an LLM client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate sends the profile's about text with the fixed style prompt and
// returns the model's bullet-style bio. No max-token cap is set.
func (g *Generator) Generate(ctx context.Context, profile types.FetchedProfile) (string, error) {
	systemPrompt := prompts.MustGet("enrichment.json", "generate-description")
	userPrompt := prompts.Format(prompts.MustGet("enrichment.json", "generate-description-user"), map[string]string{
		"About": profile.About,
	})

	return g.client.GenerateText(ctx, llm.GenerateRequest{
		UserPrompt:   userPrompt,
		SystemPrompt: systemPrompt,
		Model:        llm.DefaultModel,
		Temperature:  llm.DefaultTemperature,
	})
}

// Describe generates the bio and appends the formatted experience history.
func (g *Generator) Describe(ctx context.Context, profile types.FetchedProfile) (string, error) {
	generated, err := g.Generate(ctx, profile)
	if err != nil {
		return "", err
	}
	return Compose(generated, FormatExperienceHistory(profile.Experiences)), nil
}

// Compose joins the generated bio and the experience block into the final
// CRM description text.
func Compose(generated, history string) string {
	return generated + "\n\n" + history
}

// FormatExperienceHistory renders the work history verbatim, one block per
// entry with company, title, date range, and description lines. An empty or
// absent experience list yields an empty string.
func FormatExperienceHistory(experiences []types.Experience) string {
	if len(experiences) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(experiences))
	for _, exp := range experiences {
		lines := []string{exp.Company, exp.Title, exp.DateRange, exp.Description}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
