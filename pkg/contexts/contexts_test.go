package contexts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "projects/demo/agent/sessions/123"

func TestNewSetIndexesShortNames(t *testing.T) {
	s := NewSet(session, []Context{
		{Name: session + "/contexts/Ordering", Lifespan: 3, Parameters: map[string]any{"size": "large"}},
		{Name: "greeting", Lifespan: 1},
	})

	c, ok := s.Input("ordering")
	require.True(t, ok)
	assert.Equal(t, "ordering", c.Name)
	assert.Equal(t, 3, c.Lifespan)
	assert.Equal(t, "large", c.Parameters["size"])

	_, ok = s.Input(session + "/contexts/greeting")
	assert.True(t, ok)
	assert.Equal(t, []string{"greeting", "ordering"}, s.InputNames())
}

func TestSetAndDelete(t *testing.T) {
	s := NewSet(session, nil)
	s.Set("Ordering", 5, map[string]any{"size": "small"})
	s.Set("checkout", 2, nil)
	s.Delete("greeting")
	s.Set("checkout", 1, nil)

	assert.Equal(t, []Context{
		{Name: "checkout", Lifespan: 1},
		{Name: "greeting", Lifespan: 0},
		{Name: "ordering", Lifespan: 5, Parameters: map[string]any{"size": "small"}},
	}, s.Output())
	assert.Equal(t, session+"/contexts/checkout", s.FullName("checkout"))
}

func TestGetPrefersPendingContexts(t *testing.T) {
	s := NewSet(session, []Context{
		{Name: session + "/contexts/ordering", Lifespan: 3},
		{Name: session + "/contexts/greeting", Lifespan: 1},
	})
	s.Set("ordering", 7, map[string]any{"size": "small"})
	s.Delete("greeting")

	c, ok := s.Get("Ordering")
	require.True(t, ok)
	assert.Equal(t, 7, c.Lifespan)

	_, ok = s.Get("greeting")
	assert.False(t, ok)
	_, ok = s.Get("missing")
	assert.False(t, ok)
}
