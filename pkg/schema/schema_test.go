package schema

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapesAllReflect(t *testing.T) {
	require.Len(t, Shapes(), 6)
	for _, name := range Shapes() {
		t.Run(name, func(t *testing.T) {
			b, err := JSON(name)
			require.NoError(t, err)

			var m map[string]any
			require.NoError(t, json.Unmarshal(b, &m))
			assert.Equal(t, "object", m["type"])
			assert.NotContains(t, m, "$schema")
			assert.NotContains(t, m, "$ref")
			assert.Contains(t, m, "properties")
		})
	}
}

func TestShapeNamesAreNormalized(t *testing.T) {
	for _, name := range []string{"ActionsSdkResponse", "actions_sdk_response"} {
		_, err := For(name)
		assert.NoError(t, err, name)
	}
}

func TestUnknownShape(t *testing.T) {
	_, err := For("nope")
	assert.True(t, errors.Is(err, ErrUnknownShape))
}

func TestValidateResponse(t *testing.T) {
	res, err := Validate("actions-sdk-response", []byte(`{
		"expectUserResponse": true,
		"expectedInputs": [{
			"inputPrompt": {"richInitialPrompt": {"items": [{"simpleResponse": {"textToSpeech": "Hi"}}]}},
			"possibleIntents": [{"intent": "actions.intent.TEXT"}]
		}]
	}`))
	require.NoError(t, err)
	assert.True(t, res.Valid, res.String())

	res, err = Validate("actions-sdk-response", []byte(`{"expectUserResponse": "yes"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	res, err = Validate("actions-sdk-response", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, res.Valid, "expectUserResponse is required")
}

func TestValidateRequestAllowsUnknownFields(t *testing.T) {
	res, err := Validate("dialogflow-v2-request", []byte(`{
		"session": "projects/p/agent/sessions/s",
		"queryResult": {"action": "greet", "somethingNew": 1}
	}`))
	require.NoError(t, err)
	assert.True(t, res.Valid, res.String())
}
