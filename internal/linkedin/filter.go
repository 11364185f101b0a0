package linkedin

import (
	"time"

	"github.com/jonathan/contact-enricher/internal/types"
)

// PostedTimeLayout is the upstream timestamp format. It carries no timezone;
// both sides of the comparison are treated as naive local time.
const PostedTimeLayout = "2006-01-02 15:04:05"

// RecencyWindow is how far back a post may be to count as recent.
const RecencyWindow = 7 * 24 * time.Hour

// FilterRecentPosts keeps posts whose Posted timestamp falls within the
// recency window ending at now, inclusive at the boundary. Entries with a
// missing or unparseable timestamp are dropped. Input order is preserved;
// the upstream API already returns newest-first.
func FilterRecentPosts(posts []types.Post, now time.Time) []types.RecentPost {
	cutoff := now.Add(-RecencyWindow)

	recent := make([]types.RecentPost, 0, len(posts))
	for _, post := range posts {
		if post.Posted == "" {
			continue
		}
		postedAt, err := time.ParseInLocation(PostedTimeLayout, post.Posted, time.Local)
		if err != nil {
			continue
		}
		if postedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, types.RecentPost{
			ArticleTitle: post.ArticleTitle,
			Text:         post.Text,
		})
	}
	return recent
}
