package conversation

import (
	"context"
)

// Middleware runs before the intent handler. It may return a replacement
// conversation; returning nil keeps the current one.
type Middleware func(ctx context.Context, c *Conversation) (*Conversation, error)

// ApplyMiddleware runs middlewares in order, each seeing the result of the previous one.
func ApplyMiddleware(ctx context.Context, c *Conversation, middlewares ...Middleware) (*Conversation, error) {
	for _, m := range middlewares {
		next, err := m(ctx, c)
		if err != nil {
			return c, err
		}
		if next != nil {
			c = next
		}
	}
	return c, nil
}
