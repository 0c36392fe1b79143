// Package schema derives JSON schemas for the webhook wire shapes and
// validates documents against them.
package schema

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/protocol/dialogflow"
	"github.com/iancoleman/strcase"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownShape is returned for shape names that are not registered.
var ErrUnknownShape = errors.New("unknown shape")

var shapes = map[string]func() any{
	"actions-sdk-request":    func() any { return &actionssdk.AppRequest{} },
	"actions-sdk-response":   func() any { return &actionssdk.AppResponse{} },
	"dialogflow-v2-request":  func() any { return &dialogflow.WebhookRequest{} },
	"dialogflow-v2-response": func() any { return &dialogflow.WebhookResponse{} },
	"dialogflow-v1-request":  func() any { return &dialogflow.V1Request{} },
	"dialogflow-v1-response": func() any { return &dialogflow.V1Response{} },
}

// Shapes lists the registered shape names.
func Shapes() []string {
	ret := make([]string, 0, len(shapes))
	for k := range shapes {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		// Expand definitions inline instead of using $refs
		DoNotReference: true,
		ExpandedStruct: true,
		// platforms add fields over time
		AllowAdditionalProperties: true,
	}
}

func lookup(name string) (func() any, bool) {
	if mk, ok := shapes[name]; ok {
		return mk, true
	}
	// ActionsSdkRequest, actions_sdk_request
	mk, ok := shapes[strcase.ToKebab(name)]
	return mk, ok
}

// For returns the schema of a named shape.
func For(name string) (*jsonschema.Schema, error) {
	mk, ok := lookup(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownShape, name)
	}
	s := newReflector().Reflect(mk())
	s.Version = ""
	if s.Type == "" {
		s.Type = "object"
	}
	return s, nil
}

// JSON renders the schema of a named shape, indented.
func JSON(name string) ([]byte, error) {
	s, err := For(name)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

// Result is the outcome of a validation.
type Result struct {
	Valid  bool
	Errors []string
}

func (r *Result) String() string {
	if r.Valid {
		return "valid"
	}
	return "invalid:\n- " + strings.Join(r.Errors, "\n- ")
}

// Validate checks a JSON document against the schema of a named shape.
func Validate(name string, doc []byte) (*Result, error) {
	b, err := JSON(name)
	if err != nil {
		return nil, err
	}
	res, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(b),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate document")
	}
	ret := &Result{Valid: res.Valid()}
	for _, e := range res.Errors() {
		ret.Errors = append(ret.Errors, e.String())
	}
	return ret, nil
}
