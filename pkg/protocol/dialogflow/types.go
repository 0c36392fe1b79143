// Package dialogflow contains the v2 and v1 fulfillment webhook shapes.
package dialogflow

import (
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/responses"
)

// SourceGoogle is the original request source of Actions on Google traffic.
const SourceGoogle = "google"

// WebhookRequest is the v2 inbound body.
type WebhookRequest struct {
	ResponseID                  string                       `json:"responseId,omitempty"`
	Session                     string                       `json:"session,omitempty"`
	QueryResult                 *QueryResult                 `json:"queryResult,omitempty"`
	OriginalDetectIntentRequest *OriginalDetectIntentRequest `json:"originalDetectIntentRequest,omitempty"`
}

// QueryResult is the matched intent of a v2 request.
type QueryResult struct {
	QueryText                 string         `json:"queryText,omitempty"`
	Action                    string         `json:"action,omitempty"`
	Parameters                map[string]any `json:"parameters,omitempty"`
	AllRequiredParamsPresent  bool           `json:"allRequiredParamsPresent,omitempty"`
	FulfillmentText           string         `json:"fulfillmentText,omitempty"`
	OutputContexts            []Context      `json:"outputContexts,omitempty"`
	Intent                    *Intent        `json:"intent,omitempty"`
	IntentDetectionConfidence float64        `json:"intentDetectionConfidence,omitempty"`
	LanguageCode              string         `json:"languageCode,omitempty"`
}

// Intent names the matched Dialogflow intent.
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Context is a v2 context; Name is the full resource path.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// OriginalDetectIntentRequest carries the platform payload.
type OriginalDetectIntentRequest struct {
	Source  string                 `json:"source,omitempty"`
	Version string                 `json:"version,omitempty"`
	Payload *actionssdk.AppRequest `json:"payload,omitempty"`
}

// GooglePayload is the Actions on Google part of a Dialogflow response.
type GooglePayload struct {
	ExpectUserResponse bool                       `json:"expectUserResponse"`
	RichResponse       *responses.RichResponse    `json:"richResponse,omitempty"`
	SystemIntent       *SystemIntent              `json:"systemIntent,omitempty"`
	UserStorage        string                     `json:"userStorage,omitempty"`
	ResetUserStorage   bool                       `json:"resetUserStorage,omitempty"`
	NoInputPrompts     []responses.SimpleResponse `json:"noInputPrompts,omitempty"`
	SpeechBiasingHints []string                   `json:"speechBiasingHints,omitempty"`
}

// SystemIntent is a helper request in Dialogflow responses.
type SystemIntent struct {
	Intent string         `json:"intent"`
	Data   map[string]any `json:"data,omitempty"`
}

// Payload holds platform specific payloads.
type Payload struct {
	Google *GooglePayload `json:"google,omitempty"`
}

// EventInput triggers another intent by event instead of answering.
type EventInput struct {
	Name         string         `json:"name"`
	LanguageCode string         `json:"languageCode,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is the v2 outbound body.
type WebhookResponse struct {
	FulfillmentText    string      `json:"fulfillmentText,omitempty"`
	Payload            *Payload    `json:"payload,omitempty"`
	OutputContexts     []Context   `json:"outputContexts,omitempty"`
	FollowupEventInput *EventInput `json:"followupEventInput,omitempty"`
}

// V1Request is the v1 inbound body.
type V1Request struct {
	ID              string             `json:"id,omitempty"`
	Timestamp       string             `json:"timestamp,omitempty"`
	Lang            string             `json:"lang,omitempty"`
	SessionID       string             `json:"sessionId,omitempty"`
	Result          *V1Result          `json:"result,omitempty"`
	OriginalRequest *V1OriginalRequest `json:"originalRequest,omitempty"`
}

// V1Result is the matched intent of a v1 request.
type V1Result struct {
	Source           string         `json:"source,omitempty"`
	ResolvedQuery    string         `json:"resolvedQuery,omitempty"`
	Action           string         `json:"action,omitempty"`
	ActionIncomplete bool           `json:"actionIncomplete,omitempty"`
	Parameters       map[string]any `json:"parameters,omitempty"`
	Contexts         []V1Context    `json:"contexts,omitempty"`
	Metadata         *V1Metadata    `json:"metadata,omitempty"`
	Score            float64        `json:"score,omitempty"`
}

// V1Metadata names the matched intent.
type V1Metadata struct {
	IntentID   string `json:"intentId,omitempty"`
	IntentName string `json:"intentName,omitempty"`
}

// V1Context is a v1 context; Name is the short name.
type V1Context struct {
	Name       string         `json:"name"`
	Lifespan   int            `json:"lifespan"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// V1OriginalRequest carries the platform payload.
type V1OriginalRequest struct {
	Source  string                 `json:"source,omitempty"`
	Version string                 `json:"version,omitempty"`
	Data    *actionssdk.AppRequest `json:"data,omitempty"`
}

// V1FollowupEvent triggers another intent by event.
type V1FollowupEvent struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// V1Response is the v1 outbound body.
type V1Response struct {
	Speech        string           `json:"speech,omitempty"`
	DisplayText   string           `json:"displayText,omitempty"`
	Data          *Payload         `json:"data,omitempty"`
	ContextOut    []V1Context      `json:"contextOut,omitempty"`
	FollowupEvent *V1FollowupEvent `json:"followupEvent,omitempty"`
}
