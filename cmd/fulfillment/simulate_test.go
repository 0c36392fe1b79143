package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcnksm/go-input"
)

const testScript = `
name: counter
data:
  count: 0
actions:
  actions.intent.MAIN:
    ask: "Welcome!"
    suggestions: [count, bye]
  actions.intent.TEXT:
    ask: "You said {{ .Input }}"
  count:
    increment: [count]
    ask: "Count is {{ .Data.count }}"
  remember:
    store:
      name: "{{ .Input }}"
    ask: "Hello {{ .Input }}"
  bye:
    close: "Bye after {{ .Data.count }}"
`

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScript), 0o644))
	return path
}

func newTestSimulator(t *testing.T) *simulator {
	t.Helper()
	s, a, err := buildApp(writeScript(t), nil, nil)
	require.NoError(t, err)
	return newSimulator(a, s.Table().Actions(), true)
}

func TestSimulatorRoute(t *testing.T) {
	sim := newTestSimulator(t)

	intent, query := sim.route("count")
	assert.Equal(t, "count", intent)
	assert.Equal(t, "", query)

	intent, query = sim.route("remember  Ada ")
	assert.Equal(t, "remember", intent)
	assert.Equal(t, "Ada", query)

	intent, query = sim.route("how are you")
	assert.Equal(t, textIntent, intent)
	assert.Equal(t, "how are you", query)
}

func TestSimulatorKeepsState(t *testing.T) {
	sim := newTestSimulator(t)
	ctx := context.Background()

	_, err := sim.turn(ctx, "actions.intent.MAIN", "")
	require.NoError(t, err)
	assert.Empty(t, sim.token)

	_, err = sim.turn(ctx, "count", "")
	require.NoError(t, err)
	_, err = sim.turn(ctx, "count", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, sim.token)

	_, err = sim.turn(ctx, "remember", "Ada")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"name":"Ada"}}`, sim.storage)

	res, err := sim.turn(ctx, "bye", "")
	require.NoError(t, err)
	assert.False(t, res.ExpectUserResponse)
	assert.Equal(t, "Bye after 2", res.FinalResponse.RichResponse.Items[0].SimpleResponse.TextToSpeech)
}

func TestSimulatorRun(t *testing.T) {
	sim := newTestSimulator(t)
	var out bytes.Buffer
	ui := &input.UI{Writer: &out, Reader: strings.NewReader("bye\n")}

	require.NoError(t, sim.run(context.Background(), ui, &out, "count"))
	assert.Contains(t, out.String(), "app> Count is 1")
	assert.Contains(t, out.String(), "app> Bye after 1")
	assert.Contains(t, out.String(), "(conversation closed)")
}

func TestPrintResponseShowsSuggestions(t *testing.T) {
	sim := newTestSimulator(t)
	res, err := sim.turn(context.Background(), "actions.intent.MAIN", "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printResponse(&out, res))
	assert.Equal(t, "app> Welcome!\n[count] [bye]\n", out.String())
}
