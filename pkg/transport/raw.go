package transport

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/pkg/errors"
)

// RawEvent is a serverless style invocation carrying headers and body.
type RawEvent struct {
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// RawResult is the reply to a RawEvent.
type RawResult struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Raw serves *RawEvent invocations.
type Raw struct{}

func (Raw) Name() string { return "raw" }

func (Raw) Match(in any) bool {
	_, ok := in.(*RawEvent)
	return ok
}

func (Raw) Serve(ctx context.Context, h Handler, in any) (any, error) {
	ev := in.(*RawEvent)
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, errors.Wrap(err, "decode base64 body")
		}
		body = b
	}
	headers := http.Header{}
	for k, v := range ev.Headers {
		headers.Set(k, v)
	}

	res, err := h.Handle(ctx, &app.Request{Headers: headers, Body: body})
	if err != nil {
		return nil, err
	}
	out := &RawResult{StatusCode: res.Status, Headers: map[string]string{}, Body: string(res.Body)}
	for k := range res.Headers {
		out.Headers[k] = res.Headers.Get(k)
	}
	return out, nil
}
