// Package transport adapts framework specific invocations to app requests.
// Adapters are tried in the order they were given; the first match serves.
package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/pkg/errors"
)

// ErrNoTransport is returned when no matcher accepts an invocation.
var ErrNoTransport = errors.New("no transport matches the invocation")

// Handler runs one turn.
type Handler interface {
	Handle(ctx context.Context, req *app.Request) (*app.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *app.Request) (*app.Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *app.Request) (*app.Response, error) {
	return f(ctx, req)
}

// Matcher recognizes and serves one kind of invocation.
type Matcher interface {
	Name() string
	Match(in any) bool
	Serve(ctx context.Context, h Handler, in any) (any, error)
}

// Dispatcher serves invocations with the first matching transport.
type Dispatcher struct {
	handler  Handler
	matchers []Matcher
}

// DefaultMatchers returns the built in transports.
func DefaultMatchers() []Matcher {
	return []Matcher{NetHTTP{}, Raw{}}
}

// NewDispatcher uses DefaultMatchers when none are given.
func NewDispatcher(h Handler, matchers ...Matcher) *Dispatcher {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Dispatcher{handler: h, matchers: matchers}
}

// Dispatch serves in with the first matching transport.
func (d *Dispatcher) Dispatch(ctx context.Context, in any) (any, error) {
	for _, m := range d.matchers {
		if m.Match(in) {
			return m.Serve(ctx, d.handler, in)
		}
	}
	return nil, errors.Wrapf(ErrNoTransport, "%T", in)
}

// Names lists transports in matching order.
func (d *Dispatcher) Names() []string {
	ret := make([]string, 0, len(d.matchers))
	for _, m := range d.matchers {
		ret = append(ret, m.Name())
	}
	return ret
}

// ServeHTTP lets a Dispatcher be mounted on an http.ServeMux.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := d.Dispatch(r.Context(), &Exchange{Writer: w, Request: r}); err != nil {
		// transports write their own errors, this only happens without an http transport
		http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
	}
}
