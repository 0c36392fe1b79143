package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/fulfillment/pkg/events"
	"github.com/go-go-golems/fulfillment/pkg/schema"
	"github.com/go-go-golems/fulfillment/pkg/transcript"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowCollector struct {
	rows []types.Row
}

func (c *rowCollector) AddRow(_ context.Context, row types.Row) error {
	c.rows = append(c.rows, row)
	return nil
}

func (c *rowCollector) Close(_ context.Context) error {
	return nil
}

func (c *rowCollector) column(name string) []any {
	var ret []any
	for _, row := range c.rows {
		v, _ := row.Get(name)
		ret = append(ret, v)
	}
	return ret
}

func writeTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.db")
	dsn, err := transcript.DSNForFile(path)
	require.NoError(t, err)
	store, err := transcript.NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.UnixMilli(1700000000000)
	for _, e := range []*events.TurnEvent{
		{Type: events.EventTypeTurnReceived, TurnID: "t-1", ConversationID: "c-1", Family: "actions-sdk", Version: "v2", Request: []byte(`{"inputs":[]}`), Time: now},
		{Type: events.EventTypeTurnCompleted, TurnID: "t-1", ConversationID: "c-1", Action: "count", Status: 200, Duration: 12 * time.Millisecond, Response: []byte(`{}`), Time: now},
		{Type: events.EventTypeTurnReceived, TurnID: "t-2", ConversationID: "c-1", Time: now},
		{Type: events.EventTypeTurnReceived, TurnID: "t-3", ConversationID: "c-2", Time: now},
	} {
		require.NoError(t, store.Record(ctx, e))
	}
	return path
}

func TestTranscriptConversationRows(t *testing.T) {
	path := writeTranscript(t)
	gp := &rowCollector{}
	err := withTranscript(path, func(store *transcript.SQLiteStore) error {
		entries, err := store.Conversation(context.Background(), "c-1", 0)
		if err != nil {
			return err
		}
		return addEntryRows(context.Background(), gp, entries, false)
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"t-1", "t-1", "t-2"}, gp.column("turn_id"))
	assert.Equal(t, []any{"turn.received", "turn.completed", "turn.received"}, gp.column("type"))
	assert.Equal(t, []any{0, 200, 0}, gp.column("status"))
	assert.Equal(t, int64(12), gp.column("duration_ms")[1])
	_, ok := gp.rows[0].Get("request")
	assert.False(t, ok)
}

func TestTranscriptTurnRowsWithBodies(t *testing.T) {
	path := writeTranscript(t)
	gp := &rowCollector{}
	err := withTranscript(path, func(store *transcript.SQLiteStore) error {
		entries, err := store.Turn(context.Background(), "t-1")
		if err != nil {
			return err
		}
		return addEntryRows(context.Background(), gp, entries, true)
	})
	require.NoError(t, err)

	require.Len(t, gp.rows, 2)
	assert.Equal(t, []any{`{"inputs":[]}`, ""}, gp.column("request"))
	assert.Equal(t, []any{"", `{}`}, gp.column("response"))
	assert.Equal(t, "2023-11-14T22:13:20.000Z", gp.column("created_at")[0])
}

func TestWithTranscriptNeedsPath(t *testing.T) {
	err := withTranscript("", func(*transcript.SQLiteStore) error { return nil })
	assert.Error(t, err)
}

func TestSchemaRows(t *testing.T) {
	gp := &rowCollector{}
	require.NoError(t, addShapeRows(context.Background(), gp))
	assert.Len(t, gp.rows, len(schema.Shapes()))
	assert.Contains(t, gp.column("shape"), "dialogflow-v2-response")
	for _, d := range gp.column("direction") {
		assert.Contains(t, []any{"request", "response"}, d)
	}

	res, err := schema.Validate("actions-sdk-response", []byte(`{"expectUserResponse":"nope"}`))
	require.NoError(t, err)
	require.False(t, res.Valid)
	gp = &rowCollector{}
	require.NoError(t, addValidationRows(context.Background(), gp, "actions-sdk-response", "doc.json", res))
	assert.Len(t, gp.rows, len(res.Errors))
	assert.Equal(t, false, gp.column("valid")[0])

	res, err = schema.Validate("actions-sdk-response", []byte(`{
		"expectUserResponse": true,
		"expectedInputs": [{
			"inputPrompt": {"richInitialPrompt": {"items": [{"simpleResponse": {"textToSpeech": "Hi"}}]}},
			"possibleIntents": [{"intent": "actions.intent.TEXT"}]
		}]
	}`))
	require.NoError(t, err)
	gp = &rowCollector{}
	require.NoError(t, addValidationRows(context.Background(), gp, "actions-sdk-response", "doc.json", res))
	assert.Equal(t, []any{true}, gp.column("valid"))
}
