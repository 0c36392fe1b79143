package intents

import (
	"context"

	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Middleware wraps a Handler.
// Chain(h, m1, m2, m3) results in m1(m2(m3(h))).
type Middleware func(Handler) Handler

// Chain composes middlewares around handler.
func Chain(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// NewTurnLoggingMiddleware logs the action and the accumulated fragments around a handler.
func NewTurnLoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, conv *conversation.Conversation, inv Invocation) error {
			lg := logger
			// fall back to global if uninitialized
			if lg.GetLevel() == zerolog.NoLevel {
				lg = log.Logger
			}

			lg = lg.With().
				Str("turn_id", conv.TurnID).
				Str("action", ActionOf(conv)).
				Int("argument_count", conv.Arguments.Len()).
				Logger()

			lg.Debug().Msg("turn: running handler")

			if err := next(ctx, conv, inv); err != nil {
				lg.Error().Err(err).Msg("turn: handler failed")
				return err
			}

			kinds := map[string]int{}
			for _, f := range conv.Responses {
				kinds[f.Kind().String()]++
			}
			lg.Debug().
				Int("fragment_count", len(conv.Responses)).
				Interface("fragment_kinds", kinds).
				Bool("expect_user_response", conv.ExpectUserResponse).
				Msg("turn: handler completed")
			return nil
		}
	}
}
