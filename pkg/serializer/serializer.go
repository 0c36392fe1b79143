// Package serializer renders a finalized conversation into the wire shape of
// the platform that sent the turn.
package serializer

import (
	"github.com/go-go-golems/fulfillment/pkg/contexts"
	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/go-go-golems/fulfillment/pkg/protocol"
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/protocol/dialogflow"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/pkg/errors"
)

// SimulatorWarning replaces the speech of responses sent to the Dialogflow console.
const SimulatorWarning = "Cannot display response in Dialogflow simulator. Please test on the Google Assistant simulator instead."

// Serialize finalizes conv and renders the response body.
func Serialize(conv *conversation.Conversation) (any, error) {
	res, err := conv.Finalize()
	if err != nil {
		return nil, err
	}
	return Render(conv, res)
}

// Render renders an already finalized result.
func Render(conv *conversation.Conversation, res *conversation.Result) (any, error) {
	meta := conv.Metadata
	switch meta.Family {
	case protocol.FamilyActionsSDK:
		out := ActionsSDK(res)
		if meta.Version == protocol.V1 {
			return actionssdk.EncodeV1(out)
		}
		return out, nil
	case protocol.FamilyDialogflow:
		if conv.Dialogflow == nil {
			return nil, errors.New("dialogflow turn without dialogflow state")
		}
		if meta.Version == protocol.V1 {
			return DialogflowV1(conv, res), nil
		}
		return DialogflowV2(conv, res), nil
	}
	return nil, errors.Wrapf(protocol.ErrUnknownFormat, "cannot serialize %s", meta)
}

func richOrEmpty(r *responses.RichResponse) *responses.RichResponse {
	if r == nil {
		return responses.NewRichResponse()
	}
	return r
}

// ActionsSDK renders the conversation webhook response.
func ActionsSDK(res *conversation.Result) *actionssdk.AppResponse {
	out := &actionssdk.AppResponse{
		ExpectUserResponse: res.ExpectUserResponse,
		ConversationToken:  res.Data,
		UserStorage:        res.UserStorage,
	}
	rich := richOrEmpty(res.RichResponse)
	if !res.ExpectUserResponse {
		out.FinalResponse = &actionssdk.FinalResponse{RichResponse: rich}
		return out
	}
	intent := responses.ExpectedIntent{Intent: responses.IntentText}
	if res.ExpectedIntent != nil {
		intent = *res.ExpectedIntent
	}
	out.ExpectedInputs = []actionssdk.ExpectedInput{{
		InputPrompt: &actionssdk.InputPrompt{
			RichInitialPrompt: rich,
			NoInputPrompts:    res.NoInputPrompts,
		},
		PossibleIntents:    []responses.ExpectedIntent{intent},
		SpeechBiasingHints: res.SpeechBiasingHints,
	}}
	return out
}

func googlePayload(res *conversation.Result) *dialogflow.GooglePayload {
	g := &dialogflow.GooglePayload{
		ExpectUserResponse: res.ExpectUserResponse,
		RichResponse:       res.RichResponse,
		UserStorage:        res.UserStorage,
		NoInputPrompts:     res.NoInputPrompts,
		SpeechBiasingHints: res.SpeechBiasingHints,
	}
	if res.ExpectedIntent != nil {
		g.SystemIntent = &dialogflow.SystemIntent{
			Intent: res.ExpectedIntent.Intent,
			Data:   res.ExpectedIntent.InputValueData,
		}
	}
	return g
}

// outputContexts stores changed conversation data in the app data context and
// returns the contexts to send.
func outputContexts(conv *conversation.Conversation, res *conversation.Result) []contexts.Context {
	set := conv.Contexts()
	if res.Data != "" {
		set.Set(contexts.AppDataContext, contexts.AppDataLifespan, map[string]any{
			contexts.AppDataParameter: res.Data,
		})
	}
	return set.Output()
}

// DialogflowV2 renders a v2 webhook response.
func DialogflowV2(conv *conversation.Conversation, res *conversation.Result) *dialogflow.WebhookResponse {
	if f := res.Followup; f != nil {
		return &dialogflow.WebhookResponse{FollowupEventInput: &dialogflow.EventInput{
			Name:         f.Event,
			LanguageCode: f.Language,
			Parameters:   f.Parameters,
		}}
	}
	out := &dialogflow.WebhookResponse{
		Payload: &dialogflow.Payload{Google: googlePayload(res)},
	}
	set := conv.Contexts()
	for _, c := range outputContexts(conv, res) {
		out.OutputContexts = append(out.OutputContexts, dialogflow.Context{
			Name:          set.FullName(c.Name),
			LifespanCount: c.Lifespan,
			Parameters:    c.Parameters,
		})
	}
	if conv.Dialogflow.Simulator() {
		out.FulfillmentText = SimulatorWarning
	}
	return out
}

// DialogflowV1 renders a v1 webhook response.
func DialogflowV1(conv *conversation.Conversation, res *conversation.Result) *dialogflow.V1Response {
	if f := res.Followup; f != nil {
		return &dialogflow.V1Response{FollowupEvent: &dialogflow.V1FollowupEvent{
			Name: f.Event,
			Data: f.Parameters,
		}}
	}
	out := &dialogflow.V1Response{
		Data: &dialogflow.Payload{Google: googlePayload(res)},
	}
	for _, c := range outputContexts(conv, res) {
		out.ContextOut = append(out.ContextOut, dialogflow.V1Context{
			Name:       c.Name,
			Lifespan:   c.Lifespan,
			Parameters: c.Parameters,
		})
	}
	if conv.Dialogflow.Simulator() {
		out.Speech = SimulatorWarning
	}
	return out
}
