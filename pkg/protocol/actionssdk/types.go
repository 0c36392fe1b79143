// Package actionssdk contains the conversation webhook wire shapes used by
// the Actions SDK, both as a standalone fulfillment protocol and embedded in
// Dialogflow requests as the original platform payload.
package actionssdk

import (
	"github.com/go-go-golems/fulfillment/pkg/responses"
)

// AppRequest is the inbound conversation webhook body.
type AppRequest struct {
	User              *User         `json:"user,omitempty"`
	Device            *Device       `json:"device,omitempty"`
	Surface           *Surface      `json:"surface,omitempty"`
	Conversation      *Conversation `json:"conversation,omitempty"`
	Inputs            []Input       `json:"inputs,omitempty"`
	IsInSandbox       bool          `json:"isInSandbox,omitempty"`
	AvailableSurfaces []Surface     `json:"availableSurfaces,omitempty"`
	RequestType       string        `json:"requestType,omitempty"`
}

// User describes the user of the turn.
type User struct {
	UserID                 string       `json:"userId,omitempty"`
	IDToken                string       `json:"idToken,omitempty"`
	Profile                *UserProfile `json:"profile,omitempty"`
	AccessToken            string       `json:"accessToken,omitempty"`
	Permissions            []string     `json:"permissions,omitempty"`
	Locale                 string       `json:"locale,omitempty"`
	LastSeen               string       `json:"lastSeen,omitempty"`
	UserStorage            string       `json:"userStorage,omitempty"`
	UserVerificationStatus string       `json:"userVerificationStatus,omitempty"`
}

// UserProfile is only present once the NAME permission was granted.
type UserProfile struct {
	DisplayName string `json:"displayName,omitempty"`
	GivenName   string `json:"givenName,omitempty"`
	FamilyName  string `json:"familyName,omitempty"`
}

// Device carries the device location once permission was granted.
type Device struct {
	Location *Location `json:"location,omitempty"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Location is a place, used both for device location and place arguments.
type Location struct {
	Coordinates      *LatLng `json:"coordinates,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	ZipCode          string  `json:"zipCode,omitempty"`
	City             string  `json:"city,omitempty"`
	Name             string  `json:"name,omitempty"`
	PlaceID          string  `json:"placeId,omitempty"`
}

// Capability is a surface feature such as SCREEN_OUTPUT.
type Capability struct {
	Name string `json:"name,omitempty"`
}

// Surface lists capabilities of a device.
type Surface struct {
	Capabilities []Capability `json:"capabilities,omitempty"`
}

// Conversation identifies the conversation and carries the continuation token.
type Conversation struct {
	ConversationID    string `json:"conversationId,omitempty"`
	Type              string `json:"type,omitempty"`
	ConversationToken string `json:"conversationToken,omitempty"`
}

// RawInput is the user's literal input.
type RawInput struct {
	InputType string `json:"inputType,omitempty"`
	Query     string `json:"query,omitempty"`
}

// Input is one matched intent with its arguments.
type Input struct {
	Intent    string     `json:"intent,omitempty"`
	RawInputs []RawInput `json:"rawInputs,omitempty"`
	Arguments []Argument `json:"arguments,omitempty"`
}

// Status is the outcome attached to some helper arguments.
type Status struct {
	Code    int              `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
	Details []map[string]any `json:"details,omitempty"`
}

// Date is a calendar date.
type Date struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

// TimeOfDay is a wall clock time.
type TimeOfDay struct {
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`
	Nanos   int `json:"nanos,omitempty"`
}

// DateTime is the value of a DATETIME argument.
type DateTime struct {
	Date *Date      `json:"date,omitempty"`
	Time *TimeOfDay `json:"time,omitempty"`
}

// Argument is a typed, named argument record. A record carries one payload field in practice.
type Argument struct {
	Name            string         `json:"name,omitempty"`
	RawText         *string        `json:"rawText,omitempty"`
	TextValue       *string        `json:"textValue,omitempty"`
	Status          *Status        `json:"status,omitempty"`
	IntValue        *string        `json:"intValue,omitempty"`
	FloatValue      *float64       `json:"floatValue,omitempty"`
	BoolValue       *bool          `json:"boolValue,omitempty"`
	DatetimeValue   *DateTime      `json:"datetimeValue,omitempty"`
	PlaceValue      *Location      `json:"placeValue,omitempty"`
	Extension       map[string]any `json:"extension,omitempty"`
	StructuredValue map[string]any `json:"structuredValue,omitempty"`
}

// InputPrompt wraps the rich response of an open turn.
type InputPrompt struct {
	RichInitialPrompt *responses.RichResponse    `json:"richInitialPrompt,omitempty"`
	NoInputPrompts    []responses.SimpleResponse `json:"noInputPrompts,omitempty"`
}

// ExpectedInput describes what the platform should listen for next.
type ExpectedInput struct {
	InputPrompt        *InputPrompt               `json:"inputPrompt,omitempty"`
	PossibleIntents    []responses.ExpectedIntent `json:"possibleIntents,omitempty"`
	SpeechBiasingHints []string                   `json:"speechBiasingHints,omitempty"`
}

// FinalResponse is the reply of a closing turn.
type FinalResponse struct {
	RichResponse *responses.RichResponse `json:"richResponse,omitempty"`
}

// AppResponse is the outbound conversation webhook body.
type AppResponse struct {
	ConversationToken  string          `json:"conversationToken,omitempty"`
	UserStorage        string          `json:"userStorage,omitempty"`
	ResetUserStorage   bool            `json:"resetUserStorage,omitempty"`
	ExpectUserResponse bool            `json:"expectUserResponse"`
	ExpectedInputs     []ExpectedInput `json:"expectedInputs,omitempty"`
	FinalResponse      *FinalResponse  `json:"finalResponse,omitempty"`
}

// Well known capability names.
const (
	CapabilityScreenOutput      = "actions.capability.SCREEN_OUTPUT"
	CapabilityAudioOutput       = "actions.capability.AUDIO_OUTPUT"
	CapabilityMediaResponse     = "actions.capability.MEDIA_RESPONSE_AUDIO"
	CapabilityWebBrowser        = "actions.capability.WEB_BROWSER"
	CapabilityInteractiveCanvas = "actions.capability.INTERACTIVE_CANVAS"
)

// Input types of RawInput.
const (
	InputTypeKeyboard = "KEYBOARD"
	InputTypeVoice    = "VOICE"
	InputTypeTouch    = "TOUCH"
)
