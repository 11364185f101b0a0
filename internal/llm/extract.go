package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models often wrap JSON output in markdown fences even when told not to.
// Extraction walks an ordered list of strategies; the first one whose
// candidate parses wins.
var (
	fencedJSONRe  = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	fencedPlainRe = regexp.MustCompile("(?s)```\\s*\\n(.*?)\\n```")
)

// ParseError reports that no extraction strategy produced parseable JSON.
// RawResponse carries the full model output for diagnosis.
type ParseError struct {
	Message     string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm: %s: %v\nresponse: %s", e.Message, e.Cause, e.RawResponse)
	}
	return fmt.Sprintf("llm: %s\nresponse: %s", e.Message, e.RawResponse)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// extractionStrategy pulls a JSON candidate out of a raw model response.
// An empty return means the strategy does not apply.
type extractionStrategy func(response string) string

// extractionStrategies is the fixed fallback order: a ```json fenced block,
// then a bare fenced block, then the whole trimmed response.
var extractionStrategies = []extractionStrategy{
	func(response string) string {
		if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
			return m[1]
		}
		return ""
	},
	func(response string) string {
		if m := fencedPlainRe.FindStringSubmatch(response); m != nil {
			return m[1]
		}
		return ""
	},
	func(response string) string {
		return strings.TrimSpace(response)
	},
}

// ExtractJSON decodes the JSON object embedded in an LLM response into v,
// trying each extraction strategy in order. It returns a *ParseError with the
// raw response attached when every strategy fails.
func ExtractJSON(response string, v any) error {
	var lastErr error
	for _, strategy := range extractionStrategies {
		candidate := strategy(response)
		if candidate == "" {
			continue
		}
		err := json.Unmarshal([]byte(candidate), v)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return &ParseError{
		Message:     "failed to parse JSON from response",
		RawResponse: response,
		Cause:       lastErr,
	}
}

// ExtractJSONString returns the first strategy candidate that is valid JSON,
// without binding it to a struct. Useful when the payload is validated
// against a schema before decoding.
func ExtractJSONString(response string) (string, error) {
	var lastErr error
	for _, strategy := range extractionStrategies {
		candidate := strategy(response)
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
		lastErr = fmt.Errorf("candidate is not valid JSON")
	}

	return "", &ParseError{
		Message:     "failed to parse JSON from response",
		RawResponse: response,
		Cause:       lastErr,
	}
}
