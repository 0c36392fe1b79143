package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// MaxBodyBytes bounds request bodies read by NetHTTP.
const MaxBodyBytes = 4 << 20

// Exchange is a net/http invocation.
type Exchange struct {
	Writer  http.ResponseWriter
	Request *http.Request
}

// NetHTTP serves *Exchange invocations.
type NetHTTP struct{}

func (NetHTTP) Name() string { return "net/http" }

func (NetHTTP) Match(in any) bool {
	_, ok := in.(*Exchange)
	return ok
}

func (NetHTTP) Serve(ctx context.Context, h Handler, in any) (any, error) {
	ex := in.(*Exchange)
	w, r := ex.Writer, ex.Request

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.Errorf("method %s not allowed", r.Method))
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, nil
		}
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "read request body"))
		return nil, nil
	}

	res, err := h.Handle(ctx, &app.Request{Headers: r.Header, Body: body})
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("turn failed")
		writeError(w, http.StatusInternalServerError, err)
		return nil, nil
	}
	for k, vs := range res.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(res.Status)
	if len(res.Body) > 0 {
		if _, err := w.Write(res.Body); err != nil {
			log.Warn().Err(err).Msg("failed to write response")
		}
	}
	return res, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", app.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
