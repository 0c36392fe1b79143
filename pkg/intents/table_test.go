package intents

import (
	"context"
	"testing"

	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(calls *int) Handler {
	return func(context.Context, *conversation.Conversation, Invocation) error {
		*calls++
		return nil
	}
}

func newConversation(t *testing.T, intent string) *conversation.Conversation {
	t.Helper()
	text := "hello"
	c, err := conversation.FromActionsSDK(&actionssdk.AppRequest{
		Inputs: []actionssdk.Input{{
			Intent:    intent,
			RawInputs: []actionssdk.RawInput{{Query: "hello"}},
			Arguments: []actionssdk.Argument{{Name: "text", TextValue: &text}},
		}},
	}, conversation.Options{})
	require.NoError(t, err)
	return c
}

func TestDirectHandlerRunsOnce(t *testing.T) {
	calls := 0
	table := NewTable().Handle("greet", counting(&calls))

	require.NoError(t, table.Dispatch(context.Background(), newConversation(t, "greet")))
	assert.Equal(t, 1, calls)
}

func TestRedirectChainResolvesToTarget(t *testing.T) {
	var a, c int
	table := NewTable().
		Redirect("a", "b").
		Redirect("b", "c").
		Handle("c", counting(&c))
	table.Fallback(counting(&a))

	require.NoError(t, table.Dispatch(context.Background(), newConversation(t, "a")))
	assert.Equal(t, 1, c)
	assert.Equal(t, 0, a)
}

func TestCircularRedirectNamesSecondVisitedKey(t *testing.T) {
	calls := 0
	table := NewTable().Redirect("a", "b").Redirect("b", "a").Fallback(counting(&calls))

	_, err := table.Resolve("a")
	var cerr *CircularRedirectError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "b", cerr.Key)
	assert.True(t, errors.Is(err, ErrCircularRedirect))

	err = table.Dispatch(context.Background(), newConversation(t, "a"))
	assert.True(t, errors.Is(err, ErrCircularRedirect))
	assert.Equal(t, 0, calls)
}

func TestSelfRedirectIsCircular(t *testing.T) {
	table := NewTable().Redirect("loop", "loop")
	_, err := table.Resolve("loop")
	var cerr *CircularRedirectError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "loop", cerr.Key)
}

func TestMissingActionUsesFallback(t *testing.T) {
	calls := 0
	table := NewTable().Redirect("old", "gone").Fallback(counting(&calls))

	require.NoError(t, table.Dispatch(context.Background(), newConversation(t, "unknown")))
	require.NoError(t, table.Dispatch(context.Background(), newConversation(t, "old")))
	assert.Equal(t, 2, calls)
}

func TestMissingActionWithoutFallback(t *testing.T) {
	table := NewTable().Redirect("old", "gone")

	_, err := table.Resolve("old")
	var nerr *NotFoundError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "old", nerr.Action)
	assert.True(t, errors.Is(err, ErrHandlerNotFound))
}

func TestValidateReportsBrokenTables(t *testing.T) {
	ok := NewTable().Handle("a", counting(new(int))).Redirect("b", "a")
	assert.NoError(t, ok.Validate())

	broken := NewTable().Handle("a", counting(new(int))).Redirect("x", "y").Redirect("y", "x")
	assert.True(t, errors.Is(broken.Validate(), ErrCircularRedirect))
}

func TestInvocationCarriesInputAndFirstArgument(t *testing.T) {
	var got Invocation
	table := NewTable().Handle("actions.intent.TEXT", func(_ context.Context, _ *conversation.Conversation, inv Invocation) error {
		got = inv
		return nil
	})
	require.NoError(t, table.Dispatch(context.Background(), newConversation(t, "actions.intent.TEXT")))
	assert.Equal(t, "hello", got.Input)
	assert.Equal(t, "hello", got.Argument)
	assert.Nil(t, got.Parameters)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, c *conversation.Conversation, inv Invocation) error {
				order = append(order, name)
				return next(ctx, c, inv)
			}
		}
	}
	h := Chain(func(context.Context, *conversation.Conversation, Invocation) error {
		order = append(order, "handler")
		return nil
	}, mw("m1"), mw("m2"), NewTurnLoggingMiddleware(zerolog.Nop()))

	require.NoError(t, h(context.Background(), newConversation(t, "x"), Invocation{}))
	assert.Equal(t, []string{"m1", "m2", "handler"}, order)
}

func TestLoggingMiddlewarePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	h := Chain(func(_ context.Context, c *conversation.Conversation, _ Invocation) error {
		_ = c.Ask(responses.Text("partial"))
		return boom
	}, NewTurnLoggingMiddleware(zerolog.Nop()))
	assert.Equal(t, boom, h(context.Background(), newConversation(t, "x"), Invocation{}))
}
