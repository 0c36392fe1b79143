package conversation

import (
	"encoding/json"
	"net/http"

	"github.com/go-go-golems/fulfillment/pkg/arguments"
	"github.com/go-go-golems/fulfillment/pkg/contexts"
	"github.com/go-go-golems/fulfillment/pkg/protocol"
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/protocol/dialogflow"
	"github.com/go-go-golems/fulfillment/pkg/state"
	"github.com/google/uuid"
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitialState holds the default session bags of an application.
type InitialState struct {
	Data    map[string]any
	Storage map[string]any
}

// Options configures how a conversation is built from a request.
type Options struct {
	Metadata protocol.Metadata
	Headers  http.Header
	// Initial is deep-cloned for every turn.
	Initial InitialState
	Logger  *zerolog.Logger
}

// Decode builds a conversation from a request body of the given wire shape.
func Decode(body []byte, opts Options) (*Conversation, error) {
	switch opts.Metadata.Family {
	case protocol.FamilyActionsSDK:
		var req *actionssdk.AppRequest
		var err error
		if opts.Metadata.Version == protocol.V1 {
			req, err = actionssdk.DecodeV1(body)
		} else {
			req = &actionssdk.AppRequest{}
			err = errors.Wrap(json.Unmarshal(body, req), "decode actions sdk request")
		}
		if err != nil {
			return nil, err
		}
		return FromActionsSDK(req, opts)
	case protocol.FamilyDialogflow:
		if opts.Metadata.Version == protocol.V1 {
			req := &dialogflow.V1Request{}
			if err := json.Unmarshal(body, req); err != nil {
				return nil, errors.Wrap(err, "decode dialogflow v1 request")
			}
			return FromDialogflowV1(req, opts)
		}
		req := &dialogflow.WebhookRequest{}
		if err := json.Unmarshal(body, req); err != nil {
			return nil, errors.Wrap(err, "decode dialogflow v2 request")
		}
		return FromDialogflowV2(req, opts)
	}
	return nil, errors.Wrapf(protocol.ErrUnknownFormat, "family %q", opts.Metadata.Family)
}

// FromActionsSDK builds a conversation from an Actions SDK request.
func FromActionsSDK(req *actionssdk.AppRequest, opts Options) (*Conversation, error) {
	if opts.Metadata.Family == "" {
		opts.Metadata = protocol.Metadata{Family: protocol.FamilyActionsSDK, Version: protocol.V2}
	}
	c := newConversation(opts)
	token := ""
	if req.Conversation != nil {
		c.ID = req.Conversation.ConversationID
		token = req.Conversation.ConversationToken
	}
	c.withLogger(opts.Logger)
	if err := c.applyPayload(req, opts.Initial.Storage); err != nil {
		return nil, err
	}
	if err := c.initData(token, opts.Initial.Data); err != nil {
		return nil, err
	}
	return c, nil
}

// FromDialogflowV2 builds a conversation from a Dialogflow v2 webhook request.
func FromDialogflowV2(req *dialogflow.WebhookRequest, opts Options) (*Conversation, error) {
	if opts.Metadata.Family == "" {
		opts.Metadata = protocol.Metadata{Family: protocol.FamilyDialogflow, Version: protocol.V2}
	}
	c := newConversation(opts)
	df := &Dialogflow{Session: req.Session}
	var inbound []contexts.Context
	if q := req.QueryResult; q != nil {
		df.Action = q.Action
		df.Query = q.QueryText
		df.Language = q.LanguageCode
		df.Parameters = q.Parameters
		if q.Intent != nil {
			df.IntentName = q.Intent.DisplayName
		}
		for _, oc := range q.OutputContexts {
			inbound = append(inbound, contexts.Context{Name: oc.Name, Lifespan: oc.LifespanCount, Parameters: oc.Parameters})
		}
	}
	if df.Parameters == nil {
		df.Parameters = map[string]any{}
	}
	df.Contexts = contexts.NewSet(req.Session, inbound)

	var payload *actionssdk.AppRequest
	if o := req.OriginalDetectIntentRequest; o != nil {
		df.Source = o.Source
		payload = o.Payload
	}
	c.Dialogflow = df
	return c.finishDialogflow(payload, opts)
}

// FromDialogflowV1 builds a conversation from a Dialogflow v1 webhook request.
func FromDialogflowV1(req *dialogflow.V1Request, opts Options) (*Conversation, error) {
	if opts.Metadata.Family == "" {
		opts.Metadata = protocol.Metadata{Family: protocol.FamilyDialogflow, Version: protocol.V1}
	}
	c := newConversation(opts)
	df := &Dialogflow{Session: req.SessionID, Language: req.Lang}
	var inbound []contexts.Context
	if r := req.Result; r != nil {
		df.Action = r.Action
		df.Query = r.ResolvedQuery
		df.Parameters = r.Parameters
		if r.Metadata != nil {
			df.IntentName = r.Metadata.IntentName
		}
		for _, rc := range r.Contexts {
			inbound = append(inbound, contexts.Context{Name: rc.Name, Lifespan: rc.Lifespan, Parameters: rc.Parameters})
		}
	}
	if df.Parameters == nil {
		df.Parameters = map[string]any{}
	}
	df.Contexts = contexts.NewSet(req.SessionID, inbound)

	var payload *actionssdk.AppRequest
	if o := req.OriginalRequest; o != nil {
		df.Source = o.Source
		payload = o.Data
	}
	c.Dialogflow = df
	return c.finishDialogflow(payload, opts)
}

func (c *Conversation) finishDialogflow(payload *actionssdk.AppRequest, opts Options) (*Conversation, error) {
	df := c.Dialogflow
	if payload != nil && payload.Conversation != nil {
		c.ID = payload.Conversation.ConversationID
	}
	if c.ID == "" {
		c.ID = df.Session
	}
	c.withLogger(opts.Logger)
	c.logger = c.logger.With().Str("action", df.Action).Logger()

	if err := c.applyPayload(payload, opts.Initial.Storage); err != nil {
		return nil, err
	}
	token := ""
	if ctx, ok := df.Contexts.Input(contexts.AppDataContext); ok {
		t, err := dataParameter(ctx.Parameters)
		if err != nil {
			return nil, err
		}
		token = t
	}
	if err := c.initData(token, opts.Initial.Data); err != nil {
		return nil, err
	}
	return c, nil
}

// dataParameter reads the serialized data bag from the app data context.
func dataParameter(params map[string]any) (string, error) {
	switch v := params[contexts.AppDataParameter].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return state.Serialize(v)
	}
}

func newConversation(opts Options) *Conversation {
	headers := opts.Headers
	if headers == nil {
		headers = http.Header{}
	}
	return &Conversation{
		TurnID:    uuid.NewString(),
		Metadata:  opts.Metadata,
		Headers:   headers,
		Arguments: arguments.Parse(nil),
		User:      User{Storage: map[string]any{}},
	}
}

func (c *Conversation) withLogger(base *zerolog.Logger) {
	lg := log.Logger
	if base != nil {
		lg = *base
	}
	c.logger = lg.With().
		Str("turn_id", c.TurnID).
		Str("conversation_id", c.ID).
		Str("family", string(c.Metadata.Family)).
		Str("version", c.Metadata.Version.String()).
		Logger()
}

// applyPayload copies the Actions on Google descriptors and decodes user storage.
func (c *Conversation) applyPayload(req *actionssdk.AppRequest, defaultStorage map[string]any) error {
	storageToken := ""
	if req != nil {
		c.Request = req
		c.Sandbox = req.IsInSandbox
		c.Device = req.Device
		c.Surface = surfaceFromWire(req.Surface)
		for i := range req.AvailableSurfaces {
			c.AvailableSurfaces = append(c.AvailableSurfaces, surfaceFromWire(&req.AvailableSurfaces[i]))
		}
		if u := req.User; u != nil {
			c.User.ID = u.UserID
			c.User.Locale = u.Locale
			c.User.LastSeen = u.LastSeen
			c.User.AccessToken = u.AccessToken
			c.User.IDToken = u.IDToken
			c.User.VerificationStatus = u.UserVerificationStatus
			c.User.Permissions = u.Permissions
			c.User.Profile = u.Profile
			storageToken = u.UserStorage
		}
		if len(req.Inputs) > 0 {
			in := req.Inputs[0]
			c.Intent = in.Intent
			if len(in.RawInputs) > 0 {
				c.Input = Input{Type: in.RawInputs[0].InputType, Text: in.RawInputs[0].Query}
			}
			c.Arguments = arguments.Parse(in.Arguments)
		}
	}

	if storageToken != "" {
		storage, err := state.DecodeUserStorage(storageToken)
		if err != nil {
			return err
		}
		c.User.Storage = storage
	} else if defaultStorage != nil {
		c.User.Storage = cloneBag(defaultStorage)
	}
	enc, err := state.NewStorageEncoder(c.User.Storage)
	if err != nil {
		return err
	}
	c.storageEncoder = enc
	return nil
}

func (c *Conversation) initData(token string, def map[string]any) error {
	def = cloneBag(def)
	data, err := state.Decode(token, def)
	if err != nil {
		return err
	}
	enc, err := state.NewEncoder(def, data)
	if err != nil {
		return err
	}
	c.Data = data
	c.dataEncoder = enc
	return nil
}

func cloneBag(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return clone.Clone(m).(map[string]any)
}
