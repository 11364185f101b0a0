// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/contact-enricher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTriggerRecord outputs the CRM snapshot that started the run.
func (p *Printer) PrintTriggerRecord(record *types.TriggerRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Record:   %s\n", record.ID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", record.Fields.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", record.Fields.Title))
	if len(record.Fields.Companies) > 0 {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", strings.Join(record.Fields.Companies, ", ")))
	}
	sb.WriteString(fmt.Sprintf("LinkedIn: %s", record.Fields.LinkedIn))

	p.printBox("TRIGGER RECORD", sb.String())
}

// PrintProfile outputs a human-readable summary of the fetched profile.
func (p *Printer) PrintProfile(profile *types.FetchedProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", profile.FullName))
	sb.WriteString(fmt.Sprintf("Headline: %s\n", profile.Headline))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", profile.Company))
	sb.WriteString(fmt.Sprintf("Location: %s\n", profile.Location))

	if len(profile.Experiences) > 0 {
		sb.WriteString("\nExperience:\n")
		count := min(len(profile.Experiences), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := profile.Experiences[i]
			sb.WriteString(fmt.Sprintf("  • %s", exp.Title))
			if exp.Company != "" {
				sb.WriteString(fmt.Sprintf(" @ %s", exp.Company))
			}
			sb.WriteString("\n")
		}
		if len(profile.Experiences) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Experiences)-maxItemsToShow))
		}
	}

	p.printBox("FETCHED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecentPosts outputs the posts that survived the recency filter.
func (p *Printer) PrintRecentPosts(posts []types.RecentPost) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Posts in window: %d\n", len(posts)))

	count := min(len(posts), maxItemsToShow)
	for i := 0; i < count; i++ {
		post := posts[i]
		text := post.Text
		if post.ArticleTitle != "" {
			text = post.ArticleTitle
		}
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", text))
	}
	if len(posts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more posts\n", len(posts)-maxItemsToShow))
	}

	p.printBox("RECENT POSTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVerdict outputs the staleness comparison outcome.
func (p *Printer) PrintVerdict(verdict *types.Verdict) {
	if verdict == nil {
		return
	}

	var sb strings.Builder
	if verdict.ToUpdate {
		sb.WriteString("Update:  YES\n")
	} else {
		sb.WriteString("Update:  NO\n")
	}
	sb.WriteString(fmt.Sprintf("Reason:  %s", verdict.Reason))

	p.printBox("COMPARISON VERDICT", sb.String())
}

// PrintFinalDescription outputs the text written back to the CRM.
func (p *Printer) PrintFinalDescription(description string) {
	if description == "" {
		return
	}
	p.printBox("FINAL DESCRIPTION", strings.TrimSpace(description))
}
