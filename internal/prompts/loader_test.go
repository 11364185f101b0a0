package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("enrichment.json", "compare-profiles")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "toUpdate")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("enrichment.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	got := Format("Old profile: {{.OldProfile}}\nCurrent profile: {{.CurrentProfile}}", map[string]string{
		"OldProfile":     `{"name":"A"}`,
		"CurrentProfile": `{"name":"B"}`,
	})
	assert.Equal(t, "Old profile: {\"name\":\"A\"}\nCurrent profile: {\"name\":\"B\"}", got)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("enrichment.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "compare-profiles")
	assert.Contains(t, keys, "generate-description")
}
