package describe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-enricher/internal/llm"
	"github.com/jonathan/contact-enricher/internal/types"
)

type fakeClient struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
}

func (f *fakeClient) GenerateText(_ context.Context, req llm.GenerateRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Close() error { return nil }

func TestGenerate_PromptWiring(t *testing.T) {
	client := &fakeClient{response: "- Bullet one\n- Bullet two"}
	gen := NewGenerator(client)

	got, err := gen.Generate(context.Background(), types.FetchedProfile{About: "CEO and entrepreneur."})
	require.NoError(t, err)
	assert.Equal(t, "- Bullet one\n- Bullet two", got)

	assert.Contains(t, client.lastReq.UserPrompt, "Here is the description: CEO and entrepreneur.")
	assert.Contains(t, client.lastReq.SystemPrompt, "bullet points")
	assert.Zero(t, client.lastReq.MaxTokens)
}

func TestDescribe_AppendsExperience(t *testing.T) {
	client := &fakeClient{response: "- Leads product at Acme"}
	gen := NewGenerator(client)

	profile := types.FetchedProfile{
		About: "bio",
		Experiences: []types.Experience{
			{Company: "Acme", Title: "VP Product", DateRange: "2020 - Present", Description: "Owns roadmap"},
		},
	}

	got, err := gen.Describe(context.Background(), profile)
	require.NoError(t, err)
	want := "- Leads product at Acme\n\nAcme\nVP Product\n2020 - Present\nOwns roadmap"
	assert.Equal(t, want, got)
}

func TestDescribe_NoExperiences(t *testing.T) {
	client := &fakeClient{response: "- Bullet"}
	gen := NewGenerator(client)

	got, err := gen.Describe(context.Background(), types.FetchedProfile{About: "bio"})
	require.NoError(t, err)
	// Experience block is empty when the list is absent.
	assert.Equal(t, "- Bullet\n\n", got)
}

func TestDescribe_GenerationErrorPropagates(t *testing.T) {
	boom := errors.New("provider down")
	gen := NewGenerator(&fakeClient{err: boom})

	_, err := gen.Describe(context.Background(), types.FetchedProfile{})
	assert.ErrorIs(t, err, boom)
}

func TestFormatExperienceHistory(t *testing.T) {
	tests := []struct {
		name        string
		experiences []types.Experience
		want        string
	}{
		{
			name: "single entry",
			experiences: []types.Experience{
				{Company: "Salesforce", Title: "CEO", DateRange: "2021 - 2023", Description: "Ran MuleSoft"},
			},
			want: "Salesforce\nCEO\n2021 - 2023\nRan MuleSoft",
		},
		{
			name: "multiple entries",
			experiences: []types.Experience{
				{Company: "A", Title: "X"},
				{Company: "B", Title: "Y"},
			},
			want: "A\nX\n\n\n\nB\nY\n\n",
		},
		{
			name: "empty list",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatExperienceHistory(tt.experiences); got != tt.want {
				t.Errorf("FormatExperienceHistory() = %q, want %q", got, tt.want)
			}
		})
	}
}
