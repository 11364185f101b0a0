// Package notify resumes the upstream workflow once a record has been
// enriched.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/contact-enricher/internal/retry"
)

// DefaultWebhookURL is the workflow-resume endpoint.
const DefaultWebhookURL = "https://eo3ph3sbyg22xc7.m.pipedream.net"

// NotifyPolicy retries webhook delivery more aggressively than the API
// calls since the upstream workflow blocks until it hears back.
var NotifyPolicy = retry.Policy{
	MaxAttempts: 3,
	Delay:       10 * time.Second,
}

// Error reports a failed webhook delivery.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("notify: %s: %v", e.Message, e.Cause)
	}
	return "notify: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the notifier. Zero values fall back to defaults.
type Options struct {
	WebhookURL string
	Policy     *retry.Policy
}

// Notifier posts completion payloads to the workflow-resume webhook.
type Notifier struct {
	webhookURL string
	policy     retry.Policy
	httpClient *http.Client
}

// NewNotifier builds a notifier with a 30 second per-request timeout.
func NewNotifier(opts Options) *Notifier {
	webhookURL := opts.WebhookURL
	if webhookURL == "" {
		webhookURL = DefaultWebhookURL
	}
	policy := NotifyPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	return &Notifier{
		webhookURL: webhookURL,
		policy:     policy,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type resumePayload struct {
	FinalMemo string `json:"final_memo"`
	RecordID  string `json:"record_id"`
}

// Resume posts the final description and record id. Records without an id
// came from ad-hoc runs with no waiting workflow, so they are skipped.
func (n *Notifier) Resume(ctx context.Context, recordID, finalMemo string) error {
	if recordID == "" {
		return nil
	}

	body, err := json.Marshal(resumePayload{FinalMemo: finalMemo, RecordID: recordID})
	if err != nil {
		return &Error{Message: "failed to encode payload", Cause: err}
	}

	return n.policy.Do(ctx, "workflow resume", func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return &Error{Message: "failed to build request", Cause: reqErr}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := n.httpClient.Do(req)
		if doErr != nil {
			return &Error{Message: "request failed", Cause: doErr}
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &Error{Message: fmt.Sprintf("webhook returned status %d", resp.StatusCode)}
		}
		return nil
	})
}
