package types

// ProfileResponse is the envelope returned by the enrich-lead endpoint.
// The shape is controlled by the upstream scraping API, not by this system,
// so every field is optional and nulls must be tolerated.
type ProfileResponse struct {
	Data    FetchedProfile `json:"data"`
	Message string         `json:"message,omitempty"`
}

// FetchedProfile is the current LinkedIn profile as returned by the
// enrichment API. Only the fields the pipeline reads are declared; the
// response carries many more.
type FetchedProfile struct {
	FullName    string       `json:"full_name,omitempty"`
	FirstName   string       `json:"first_name,omitempty"`
	LastName    string       `json:"last_name,omitempty"`
	About       string       `json:"about,omitempty"`
	Company     string       `json:"company,omitempty"`
	Headline    string       `json:"headline,omitempty"`
	JobTitle    string       `json:"job_title,omitempty"`
	Location    string       `json:"location,omitempty"`
	LinkedInURL string       `json:"linkedin_url,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
}

// Experience is a single work-history entry. Each field may be absent.
type Experience struct {
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	DateRange   string `json:"date_range,omitempty"`
	Description string `json:"description,omitempty"`
}

// PostsResponse is the envelope returned by the get-profile-posts endpoint.
type PostsResponse struct {
	Data []Post `json:"data"`
}

// Post is a single feed item from the posts endpoint. Posted uses the
// upstream "YYYY-MM-DD HH:MM:SS" format with no timezone information.
type Post struct {
	Posted       string `json:"posted,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	Text         string `json:"text,omitempty"`
	PostURL      string `json:"post_url,omitempty"`
}

// RecentPost is the projection of a Post kept by the recency filter and
// forwarded to the change detector.
type RecentPost struct {
	ArticleTitle string `json:"article_title"`
	Text         string `json:"text"`
}
