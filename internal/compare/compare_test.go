package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-enricher/internal/llm"
	"github.com/jonathan/contact-enricher/internal/retry"
	"github.com/jonathan/contact-enricher/internal/types"
)

// fakeClient returns canned responses in order, recording prompts.
type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	requests  []llm.GenerateRequest
}

func (f *fakeClient) GenerateText(_ context.Context, req llm.GenerateRequest) (string, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no more responses")
}

func (f *fakeClient) Close() error { return nil }

var fastPolicy = retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}

func TestDetect_ReturnsVerdict(t *testing.T) {
	client := &fakeClient{responses: []string{"```json\n{\"toUpdate\": true, \"reason\": \"new role\"}\n```"}}
	detector := NewDetector(client).WithPolicy(fastPolicy)

	old := types.OldProfile{Name: "Brent", Title: "Director", Companies: []string{"MuleSoft"}}
	profile := types.FetchedProfile{FullName: "Brent Hayward", Headline: "CEO", About: "bio"}

	verdict, err := detector.Detect(context.Background(), old, profile, []types.RecentPost{{Text: "hello"}})
	require.NoError(t, err)
	assert.True(t, verdict.ToUpdate)
	assert.Equal(t, "new role", verdict.Reason)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Contains(t, req.SystemPrompt, "toUpdate")
	assert.Contains(t, req.UserPrompt, `"Brent"`)
	assert.Contains(t, req.UserPrompt, `"CEO"`)
	assert.Contains(t, req.UserPrompt, "recentPosts")
}

func TestDetect_FalseVerdict(t *testing.T) {
	client := &fakeClient{responses: []string{`{"toUpdate": false, "reason": "no key change"}`}}
	detector := NewDetector(client).WithPolicy(fastPolicy)

	verdict, err := detector.Detect(context.Background(), types.OldProfile{}, types.FetchedProfile{}, nil)
	require.NoError(t, err)
	assert.False(t, verdict.ToUpdate)
	assert.Equal(t, "no key change", verdict.Reason)
}

func TestDetect_RetriesOnParseFailure(t *testing.T) {
	// First response is prose, second is valid JSON: the parse failure is
	// retried like any other error.
	client := &fakeClient{responses: []string{
		"I think the profile changed quite a bit.",
		`{"toUpdate": true, "reason": "new company"}`,
	}}
	detector := NewDetector(client).WithPolicy(fastPolicy)

	verdict, err := detector.Detect(context.Background(), types.OldProfile{}, types.FetchedProfile{}, nil)
	require.NoError(t, err)
	assert.True(t, verdict.ToUpdate)
	assert.Equal(t, 2, client.calls)
}

func TestDetect_SchemaRejectsWrongShape(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"toUpdate": "yes", "reason": "x"}`,
		`{"toUpdate": "yes", "reason": "x"}`,
	}}
	detector := NewDetector(client).WithPolicy(fastPolicy)

	_, err := detector.Detect(context.Background(), types.OldProfile{}, types.FetchedProfile{}, nil)
	require.Error(t, err)

	var parseErr *llm.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, client.calls)
}

func TestDetect_ExhaustsRetries(t *testing.T) {
	boom := errors.New("provider down")
	client := &fakeClient{errs: []error{boom, boom}}
	detector := NewDetector(client).WithPolicy(fastPolicy)

	_, err := detector.Detect(context.Background(), types.OldProfile{}, types.FetchedProfile{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, client.calls)
}

func TestStripRichText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Mixing Board: curated expert community.",
			want:  "Mixing Board: curated expert community.",
		},
		{
			name:  "html stripped",
			input: "<p>Mixing Board: curated <b>expert</b> community.</p>",
			want:  "Mixing Board: curated expert community.",
		},
		{
			name:  "multiline html",
			input: "<div>First line</div>\n<div>Second line</div>",
			want:  "First line\nSecond line",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripRichText(tt.input); got != tt.want {
				t.Errorf("StripRichText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
