// Package linkedin fetches profile and post data from the LinkedIn scraping API.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/contact-enricher/internal/retry"
	"github.com/jonathan/contact-enricher/internal/types"
)

// DefaultBaseURL is the fixed RapidAPI host for the enrichment endpoints.
const DefaultBaseURL = "https://fresh-linkedin-profile-data.p.rapidapi.com"

// enrichLeadFlags is the fixed set of sections excluded from the enrich-lead
// response. The profile comparison only needs the headline/about/experience
// core, so everything else stays off.
const enrichLeadFlags = "include_skills=false&include_certifications=false&include_publications=false" +
	"&include_honors=false&include_volunteers=false&include_projects=false&include_patents=false" +
	"&include_courses=false&include_organizations=false&include_profile_status=false" +
	"&include_company_public_url=false"

// FetchPolicy is the retry policy for both enrichment endpoints: one retry
// after a long fixed delay, applied uniformly to any failure.
var FetchPolicy = retry.Policy{
	MaxAttempts: 2,
	Delay:       300 * time.Second,
}

// Error represents a failure calling the scraping API.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("linkedin fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("linkedin fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	// APIKey is the RapidAPI credential; required.
	APIKey string
	// BaseURL overrides the API root; used by tests. Empty means DefaultBaseURL.
	BaseURL string
	// Policy overrides FetchPolicy; used by tests to shrink delays.
	Policy *retry.Policy
}

// Client calls the profile and posts endpoints. Both fetches round-trip
// independently; nothing is cached.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	policy     retry.Policy
	httpClient *http.Client
}

// NewClient builds a client, checking the credential eagerly so a
// misconfigured run fails before any outbound call.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, &Error{Message: "RAPID_API_KEY is not set"}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, &Error{URL: baseURL, Message: "invalid base URL", Cause: err}
	}

	policy := FetchPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	return &Client{
		baseURL: baseURL,
		host:    parsed.Host,
		apiKey:  opts.APIKey,
		policy:  policy,
		// The upstream scraper can be slow; no client-side timeout, callers
		// cancel through ctx.
		httpClient: &http.Client{},
	}, nil
}

// FetchProfile calls the enrich-lead endpoint for an already-escaped profile
// URL and returns the parsed envelope.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (*types.ProfileResponse, error) {
	reqURL := fmt.Sprintf("%s/enrich-lead?linkedin_url=%s&%s", c.baseURL, profileURL, enrichLeadFlags)

	var envelope types.ProfileResponse
	err := c.policy.Do(ctx, "linkedin profile fetch", func() error {
		return c.getJSON(ctx, reqURL, &envelope)
	})
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

// FetchPosts calls the get-profile-posts endpoint for an already-escaped
// profile URL and returns the parsed envelope.
func (c *Client) FetchPosts(ctx context.Context, profileURL string) (*types.PostsResponse, error) {
	reqURL := fmt.Sprintf("%s/get-profile-posts?linkedin_url=%s&type=posts", c.baseURL, profileURL)

	var envelope types.PostsResponse
	err := c.policy.Do(ctx, "linkedin posts fetch", func() error {
		return c.getJSON(ctx, reqURL, &envelope)
	})
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &Error{URL: reqURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{URL: reqURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{URL: reqURL, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &Error{URL: reqURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &Error{URL: reqURL, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// EscapeProfileURL percent-encodes a LinkedIn URL for use as a query value,
// keeping ":/?&=" literal the way the upstream API expects.
func EscapeProfileURL(raw string) string {
	const safe = ":/?&="
	var sb strings.Builder
	for _, b := range []byte(raw) {
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case b == '-' || b == '_' || b == '.' || b == '~':
			sb.WriteByte(b)
		case strings.IndexByte(safe, b) >= 0:
			sb.WriteByte(b)
		default:
			sb.WriteString(fmt.Sprintf("%%%02X", b))
		}
	}
	return sb.String()
}
