// Package state round-trips the turn scoped data bag and the user scoped
// storage bag through the opaque strings embedded in the protocol.
package state

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedState is returned when a stored token is not valid JSON.
var ErrMalformedState = errors.New("malformed session state")

// Decode parses a token. An empty token yields a shallow copy of def, or an
// empty map when def is nil.
func Decode(token string, def map[string]any) (map[string]any, error) {
	if strings.TrimSpace(token) == "" {
		out := make(map[string]any, len(def))
		for k, v := range def {
			out[k] = v
		}
		return out, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(token), &out); err != nil {
		return nil, errors.Wrapf(ErrMalformedState, "%v", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Serialize renders v as JSON. Map keys are sorted so equal values serialize
// to equal strings.
func Serialize(v any) (string, error) {
	if v == nil {
		v = map[string]any{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "serialize session state")
	}
	return string(b), nil
}

// Encoder decides whether an outgoing bag has to be written back.
// The outgoing value is emitted only when its serialized form differs from
// both the serialized default and the serialized value decoded at the start
// of the turn.
type Encoder struct {
	Default  string
	Incoming string
}

// NewEncoder snapshots the default and incoming bags.
func NewEncoder(def, incoming map[string]any) (*Encoder, error) {
	d, err := Serialize(def)
	if err != nil {
		return nil, err
	}
	in, err := Serialize(incoming)
	if err != nil {
		return nil, err
	}
	return &Encoder{Default: d, Incoming: in}, nil
}

// Encode serializes current. changed is false when the token should be omitted.
func (e *Encoder) Encode(current map[string]any) (string, bool, error) {
	out, err := Serialize(current)
	if err != nil {
		return "", false, err
	}
	if out == e.Default || out == e.Incoming {
		return out, false, nil
	}
	return out, true, nil
}
