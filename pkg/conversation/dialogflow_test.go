package conversation

import (
	"testing"

	"github.com/go-go-golems/fulfillment/pkg/contexts"
	"github.com/go-go-golems/fulfillment/pkg/protocol"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dialogflowV2Body = `{
	"responseId": "r-1",
	"session": "projects/demo/agent/sessions/s-1",
	"queryResult": {
		"queryText": "order a pizza",
		"action": "order",
		"parameters": {"size": "large"},
		"languageCode": "en",
		"intent": {"name": "projects/demo/agent/intents/1", "displayName": "Order"},
		"outputContexts": [
			{"name": "projects/demo/agent/sessions/s-1/contexts/_actions_on_google", "lifespanCount": 99, "parameters": {"data": "{\"pizzas\":1}"}},
			{"name": "projects/demo/agent/sessions/s-1/contexts/ordering", "lifespanCount": 2}
		]
	},
	"originalDetectIntentRequest": {
		"source": "google",
		"version": "2",
		"payload": {
			"user": {"userId": "u-1", "userStorage": "{\"data\":{\"name\":\"Ada\"}}"},
			"conversation": {"conversationId": "c-1"},
			"inputs": [{"intent": "actions.intent.TEXT", "rawInputs": [{"inputType": "VOICE", "query": "order a pizza"}]}]
		}
	}
}`

func decodeDialogflowV2(t *testing.T, body string) *Conversation {
	t.Helper()
	c, err := Decode([]byte(body), Options{Metadata: protocol.Metadata{Family: protocol.FamilyDialogflow, Version: protocol.V2}})
	require.NoError(t, err)
	return c
}

func TestDecodeDialogflowV2(t *testing.T) {
	c := decodeDialogflowV2(t, dialogflowV2Body)

	require.NotNil(t, c.Dialogflow)
	assert.Equal(t, "order", c.Dialogflow.Action)
	assert.Equal(t, "Order", c.Dialogflow.IntentName)
	assert.Equal(t, "large", c.Dialogflow.Parameters["size"])
	assert.False(t, c.Dialogflow.Simulator())
	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, float64(1), c.Data["pizzas"])
	assert.Equal(t, "Ada", c.User.Storage["name"])

	ctx, ok := c.Contexts().Input("ordering")
	require.True(t, ok)
	assert.Equal(t, 2, ctx.Lifespan)
}

func TestDecodeDialogflowSimulator(t *testing.T) {
	c := decodeDialogflowV2(t, `{"session":"s","queryResult":{"action":"greet"},"originalDetectIntentRequest":{"source":"facebook"}}`)
	assert.True(t, c.Dialogflow.Simulator())
	assert.Nil(t, c.Request)
	assert.Equal(t, "s", c.ID)
	assert.Empty(t, c.Data)
}

func TestDecodeDialogflowV1(t *testing.T) {
	body := `{
		"sessionId": "s-1", "lang": "en",
		"result": {"action": "greet", "resolvedQuery": "hi", "parameters": {"name": "Ada"},
			"contexts": [{"name": "_actions_on_google", "lifespan": 99, "parameters": {"data": "{\"n\":2}"}}],
			"metadata": {"intentName": "Greet"}},
		"originalRequest": {"source": "google", "data": {"user": {"userId": "u-1"}}}
	}`
	c, err := Decode([]byte(body), Options{Metadata: protocol.Metadata{Family: protocol.FamilyDialogflow, Version: protocol.V1}})
	require.NoError(t, err)
	assert.Equal(t, "greet", c.Dialogflow.Action)
	assert.Equal(t, "Greet", c.Dialogflow.IntentName)
	assert.Equal(t, "en", c.Dialogflow.Language)
	assert.Equal(t, float64(2), c.Data["n"])
	assert.Equal(t, "u-1", c.User.ID)
}

func TestFollowupShortCircuitsFinalize(t *testing.T) {
	c := decodeDialogflowV2(t, dialogflowV2Body)
	require.NoError(t, c.Followup("retry", map[string]any{"attempt": 2}))

	res, err := c.Finalize()
	require.NoError(t, err)
	require.NotNil(t, res.Followup)
	assert.Equal(t, "retry", res.Followup.Event)
	assert.Equal(t, "en", res.Followup.Language)
	assert.Nil(t, res.RichResponse)

	_, err = c.Finalize()
	assert.True(t, errors.Is(err, ErrDigested))
	assert.True(t, errors.Is(c.Followup("again", nil), ErrDigested))
}

func TestFollowupRequiresDialogflow(t *testing.T) {
	c := newActionsConversation(t, "", InitialState{})
	assert.True(t, errors.Is(c.Followup("x", nil), ErrNotDialogflow))
}

func TestDialogflowDataChangeIsReported(t *testing.T) {
	c := decodeDialogflowV2(t, dialogflowV2Body)
	c.Data["pizzas"] = float64(2)
	c.Contexts().Set("ordering", 3, nil)
	require.NoError(t, c.Ask(responses.Text("Another one?")))

	res, err := c.Finalize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"pizzas":2}`, res.Data)
	assert.Equal(t, []contexts.Context{{Name: "ordering", Lifespan: 3}}, c.Contexts().Output())
}
