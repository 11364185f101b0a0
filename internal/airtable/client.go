// Package airtable writes enrichment results back to the CRM base.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jonathan/contact-enricher/internal/retry"
)

// Defaults for the contacts base. Overridable through Options for other
// bases or for tests.
const (
	DefaultBaseURL = "https://api.airtable.com"
	DefaultBaseID  = "app18YWzPlAFs2umJ"
	DefaultTableID = "tblIkmDFlC91L9EHi"
)

// UpdatePolicy governs record update attempts.
var UpdatePolicy = retry.Policy{
	MaxAttempts: 2,
	Delay:       30 * time.Second,
}

// Error reports a failed Airtable call.
type Error struct {
	RecordID string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("airtable: %s (record %s): %v", e.Message, e.RecordID, e.Cause)
	}
	return fmt.Sprintf("airtable: %s (record %s)", e.Message, e.RecordID)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the client. Zero values fall back to defaults and the
// AIRTABLE_API_KEY environment variable.
type Options struct {
	APIKey  string
	BaseURL string
	BaseID  string
	TableID string
	Policy  *retry.Policy
}

// Client updates records over the Airtable REST API.
type Client struct {
	apiKey     string
	baseURL    string
	baseID     string
	tableID    string
	policy     retry.Policy
	httpClient *http.Client
}

// NewClient validates the API key up front so a misconfigured run fails
// before any profile fetching happens.
func NewClient(opts Options) (*Client, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("AIRTABLE_API_KEY")
	}
	if apiKey == "" {
		return nil, &Error{Message: "AIRTABLE_API_KEY is not set"}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseID := opts.BaseID
	if baseID == "" {
		baseID = DefaultBaseID
	}
	tableID := opts.TableID
	if tableID == "" {
		tableID = DefaultTableID
	}
	policy := UpdatePolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		baseID:  baseID,
		tableID: tableID,
		policy:  policy,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type updateRequest struct {
	Fields map[string]any `json:"fields"`
}

// UpdateDescription patches the record's Description field. A missing record
// id makes the call a no-op so test runs without a CRM record stay safe.
func (c *Client) UpdateDescription(ctx context.Context, recordID, description string) error {
	if recordID == "" {
		return nil
	}

	body, err := json.Marshal(updateRequest{
		Fields: map[string]any{"Description": description},
	})
	if err != nil {
		return &Error{RecordID: recordID, Message: "failed to encode update", Cause: err}
	}

	url := fmt.Sprintf("%s/v0/%s/%s/%s", c.baseURL, c.baseID, c.tableID, recordID)
	return c.policy.Do(ctx, "airtable update", func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
		if reqErr != nil {
			return &Error{RecordID: recordID, Message: "failed to build request", Cause: reqErr}
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return &Error{RecordID: recordID, Message: "request failed", Cause: doErr}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &Error{
				RecordID: recordID,
				Message:  fmt.Sprintf("update returned status %d: %s", resp.StatusCode, string(respBody)),
			}
		}
		return nil
	})
}
