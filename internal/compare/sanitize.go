package compare

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripRichText flattens CRM descriptions that arrive with HTML markup into
// plain text. Plain strings pass through unchanged.
func StripRichText(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	text := doc.Text()
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
