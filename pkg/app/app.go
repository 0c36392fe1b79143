// Package app dispatches one webhook request through verification, decoding,
// middleware, intent routing and serialization.
package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/go-go-golems/fulfillment/pkg/events"
	"github.com/go-go-golems/fulfillment/pkg/intents"
	"github.com/go-go-golems/fulfillment/pkg/protocol"
	"github.com/go-go-golems/fulfillment/pkg/serializer"
	"github.com/go-go-golems/fulfillment/pkg/verification"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContentType is set on every response.
const ContentType = "application/json;charset=utf-8"

// ErrUnauthorized can be returned by handlers to answer 401.
var ErrUnauthorized = errors.New("unauthorized")

// Request is the transport independent input of a turn.
type Request struct {
	Headers http.Header
	Body    []byte
}

// Response is the transport independent output of a turn.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// ExceptionHandler gets handler, middleware and routing errors. It may add
// a response to conv; returning an error aborts the turn.
type ExceptionHandler func(ctx context.Context, conv *conversation.Conversation, err error) error

// Initializer returns the default session state of a turn.
type Initializer func() conversation.InitialState

// Options configures an App.
type Options struct {
	Intents           *intents.Table
	Middleware        []conversation.Middleware
	HandlerMiddleware []intents.Middleware
	Exception         ExceptionHandler
	Init              Initializer
	Verification      *verification.Settings
	// Events receives turn lifecycle events when set.
	Events *events.PublisherManager
	Logger *zerolog.Logger
}

// App handles turns. It is safe for concurrent use.
type App struct {
	opts   Options
	logger zerolog.Logger
}

// New validates the options and returns an App.
func New(opts Options) (*App, error) {
	if opts.Intents == nil {
		return nil, errors.New("app: intent table is required")
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if err := opts.Intents.Validate(); err != nil {
		logger.Warn().Err(err).Msg("intent table has unresolvable actions")
	}
	logger.Debug().
		Strs("actions", opts.Intents.Actions()).
		Str("verification", opts.Verification.String()).
		Int("middleware", len(opts.Middleware)).
		Msg("app configured")
	return &App{opts: opts, logger: logger}, nil
}

func jsonHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", ContentType)
	return h
}

func jsonResponse(status int, body any) (*Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode response")
	}
	return &Response{Status: status, Headers: jsonHeaders(), Body: b}, nil
}

func unauthorized() *Response {
	return &Response{Status: http.StatusUnauthorized, Headers: jsonHeaders(), Body: []byte{}}
}

// Handle runs one turn. Errors returned are fatal for the turn; the
// transport should answer 500.
func (a *App) Handle(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	headers := req.Headers
	if headers == nil {
		headers = http.Header{}
	}

	if verr := a.opts.Verification.Check(ctx, headers); verr != nil {
		a.logger.Warn().Str("error", verr.Message).Int("status", verr.Status).Msg("turn rejected by verification")
		a.publish(events.TurnEvent{Type: events.EventTypeTurnRejected, Status: verr.Status, Error: verr.Message})
		return jsonResponse(verr.Status, verr.Body())
	}

	meta, err := protocol.Detect(headers, req.Body)
	if err != nil {
		a.logger.Warn().Err(err).Msg("cannot detect request format")
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var initial conversation.InitialState
	if a.opts.Init != nil {
		initial = a.opts.Init()
	}
	conv, err := conversation.Decode(req.Body, conversation.Options{
		Metadata: meta,
		Headers:  headers,
		Initial:  initial,
		Logger:   &a.logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode conversation")
	}

	base := events.TurnEvent{
		TurnID:         conv.TurnID,
		ConversationID: conv.ID,
		Family:         string(meta.Family),
		Version:        meta.Version.String(),
		Action:         intents.ActionOf(conv),
	}
	received := base
	received.Type = events.EventTypeTurnReceived
	received.Request = json.RawMessage(req.Body)
	a.publish(received)

	lg := conv.Logger()
	lg.Debug().RawJSON("request", req.Body).Msg("turn received")

	res, err := a.run(ctx, conv)
	if err != nil {
		failed := base
		failed.Type = events.EventTypeTurnFailed
		failed.Error = err.Error()
		failed.Duration = time.Since(start)
		a.publish(failed)
		lg.Error().Err(err).Msg("turn failed")
		return nil, err
	}

	completed := base
	completed.Type = events.EventTypeTurnCompleted
	completed.Status = res.Status
	completed.Duration = time.Since(start)
	if len(res.Body) > 0 {
		completed.Response = json.RawMessage(res.Body)
		lg.Debug().RawJSON("response", res.Body).Int("status", res.Status).Msg("turn completed")
	}
	a.publish(completed)
	return res, nil
}

func (a *App) run(ctx context.Context, conv *conversation.Conversation) (*Response, error) {
	conv, err := a.dispatch(ctx, conv)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return unauthorized(), nil
		}
		if a.opts.Exception == nil {
			return nil, err
		}
		if herr := a.opts.Exception(ctx, conv, err); herr != nil {
			if errors.Is(herr, ErrUnauthorized) {
				return unauthorized(), nil
			}
			return nil, herr
		}
	}

	body, err := serializer.Serialize(conv)
	if err != nil {
		return nil, err
	}
	return jsonResponse(http.StatusOK, body)
}

// dispatch runs middleware and the resolved handler. The returned
// conversation is the one the handler saw.
func (a *App) dispatch(ctx context.Context, conv *conversation.Conversation) (*conversation.Conversation, error) {
	conv, err := conversation.ApplyMiddleware(ctx, conv, a.opts.Middleware...)
	if err != nil {
		return conv, err
	}
	handler, err := a.opts.Intents.Resolve(intents.ActionOf(conv))
	if err != nil {
		return conv, err
	}
	handler = intents.Chain(handler, a.opts.HandlerMiddleware...)
	return conv, handler(ctx, conv, intents.NewInvocation(conv))
}

func (a *App) publish(e events.TurnEvent) {
	if a.opts.Events == nil {
		return
	}
	e.Time = time.Now()
	a.opts.Events.PublishBlind(e)
}
