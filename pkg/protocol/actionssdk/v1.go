package actionssdk

import (
	"encoding/json"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
)

// The v1 conversation webhook carries the same content as v2 with snake_case
// keys. Requests are converted to camelCase and decoded into the v2 structs,
// responses are rendered as v2 and re-keyed to snake_case.

// DecodeV1 decodes a v1 (snake_case) request body.
func DecodeV1(body []byte) (*AppRequest, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode v1 request")
	}
	b, err := json.Marshal(rekey(raw, strcase.ToLowerCamel))
	if err != nil {
		return nil, errors.Wrap(err, "re-encode v1 request")
	}
	req := &AppRequest{}
	if err := json.Unmarshal(b, req); err != nil {
		return nil, errors.Wrap(err, "decode v1 request")
	}
	return req, nil
}

// EncodeV1 renders a response with snake_case keys.
func EncodeV1(res *AppResponse) (map[string]any, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(err, "encode v1 response")
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "encode v1 response")
	}
	out, ok := rekey(raw, strcase.ToSnake).(map[string]any)
	if !ok {
		return nil, errors.New("encode v1 response: response is not an object")
	}
	return out, nil
}

// LooksLikeV1 reports whether a decoded body uses v1 snake_case keys.
func LooksLikeV1(raw map[string]any) bool {
	if _, ok := raw["conversation"]; ok {
		if c, ok := raw["conversation"].(map[string]any); ok {
			if _, ok := c["conversation_id"]; ok {
				return true
			}
		}
	}
	if u, ok := raw["user"].(map[string]any); ok {
		if _, ok := u["user_id"]; ok {
			return true
		}
	}
	return false
}

// opaqueFields hold developer data; their contents keep their keys.
var opaqueFields = map[string]bool{
	"updatedState":     true,
	"updated_state":    true,
	"structuredValue":  true,
	"structured_value": true,
}

// rekey rewrites protocol map keys recursively. Protobuf type markers
// ("@type") and the contents of opaque fields are kept.
func rekey(v any, fn func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key := k
			if !strings.HasPrefix(k, "@") {
				key = fn(k)
			}
			if opaqueFields[k] {
				out[key] = val
				continue
			}
			out[key] = rekey(val, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = rekey(val, fn)
		}
		return out
	}
	return v
}
