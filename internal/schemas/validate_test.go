package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verdictSchema = `{
	"type": "object",
	"properties": {
		"toUpdate": {"type": "boolean"},
		"reason": {"type": "string"}
	},
	"required": ["toUpdate", "reason"]
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(verdictSchema, `{"toUpdate": true, "reason": "new role"}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingRequiredField(t *testing.T) {
	err := ValidateJSONString(verdictSchema, `{"toUpdate": true}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(verdictSchema, `{"toUpdate": "yes", "reason": "x"}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "toUpdate", validationErr.Errors[0].Field)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": [not json`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
