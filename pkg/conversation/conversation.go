// Package conversation holds the mutable state of one turn: the fragments the
// handler adds, the session state bags and the request descriptors.
package conversation

import (
	"net/http"

	"github.com/go-go-golems/fulfillment/pkg/arguments"
	"github.com/go-go-golems/fulfillment/pkg/contexts"
	"github.com/go-go-golems/fulfillment/pkg/protocol"
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/protocol/dialogflow"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/go-go-golems/fulfillment/pkg/state"
	"github.com/rs/zerolog"
)

// User describes the user of the turn.
type User struct {
	ID                 string
	Locale             string
	LastSeen           string
	AccessToken        string
	IDToken            string
	VerificationStatus string
	Permissions        []string
	Profile            *actionssdk.UserProfile
	// Storage persists across conversations of the same user.
	Storage map[string]any
}

// Input is the literal input of the turn.
type Input struct {
	Type string
	Text string
}

// Surface lists capabilities of a device.
type Surface struct {
	Capabilities []string
}

// Has reports whether the surface supports capability.
func (s Surface) Has(capability string) bool {
	for _, c := range s.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func surfaceFromWire(s *actionssdk.Surface) Surface {
	if s == nil {
		return Surface{}
	}
	out := Surface{Capabilities: make([]string, 0, len(s.Capabilities))}
	for _, c := range s.Capabilities {
		out.Capabilities = append(out.Capabilities, c.Name)
	}
	return out
}

// Followup is a request to trigger another Dialogflow intent by event.
type Followup struct {
	Event      string
	Language   string
	Parameters map[string]any
}

// Dialogflow carries the agent side of a Dialogflow turn.
type Dialogflow struct {
	Action     string
	IntentName string
	Query      string
	Session    string
	Language   string
	// Source is the original request source, "google" for Actions on Google traffic.
	Source     string
	Parameters map[string]any
	Contexts   *contexts.Set

	followup *Followup
}

// Simulator reports whether the request did not come from Actions on Google.
func (d *Dialogflow) Simulator() bool {
	return d.Source != dialogflow.SourceGoogle
}

// Conversation is the state of one turn.
type Conversation struct {
	ID       string
	TurnID   string
	Metadata protocol.Metadata
	Headers  http.Header
	// Request is the Actions on Google payload; empty for simulator traffic.
	Request *actionssdk.AppRequest

	Responses          []responses.Fragment
	ExpectUserResponse bool

	// Data lives for the duration of the conversation.
	Data map[string]any
	User User

	Intent            string
	Input             Input
	Arguments         arguments.Arguments
	Device            *actionssdk.Device
	Surface           Surface
	AvailableSurfaces []Surface
	Sandbox           bool

	NoInputPrompts []responses.SimpleResponse
	SpeechBiasing  []string

	Dialogflow *Dialogflow

	digested  bool
	responded bool

	dataEncoder    *state.Encoder
	storageEncoder *state.StorageEncoder
	logger         zerolog.Logger
}

// Logger returns the turn logger.
func (c *Conversation) Logger() *zerolog.Logger {
	return &c.logger
}

// Screen reports whether the current surface has a screen.
func (c *Conversation) Screen() bool {
	return c.Surface.Has(actionssdk.CapabilityScreenOutput)
}

// Digested reports whether the conversation was finalized.
func (c *Conversation) Digested() bool {
	return c.digested
}

// Add appends fragments to the response.
func (c *Conversation) Add(fragments ...responses.Fragment) error {
	if c.digested {
		return ErrDigested
	}
	c.Responses = append(c.Responses, fragments...)
	c.responded = true
	return nil
}

// Ask adds fragments and keeps the microphone open.
func (c *Conversation) Ask(fragments ...responses.Fragment) error {
	if c.digested {
		return ErrDigested
	}
	c.ExpectUserResponse = true
	return c.Add(fragments...)
}

// Close adds fragments and ends the conversation.
func (c *Conversation) Close(fragments ...responses.Fragment) error {
	if c.digested {
		return ErrDigested
	}
	c.ExpectUserResponse = false
	return c.Add(fragments...)
}

// Followup triggers the Dialogflow intent bound to event instead of answering.
func (c *Conversation) Followup(event string, params map[string]any) error {
	if c.Dialogflow == nil {
		return ErrNotDialogflow
	}
	if c.digested {
		return ErrDigested
	}
	c.Dialogflow.followup = &Followup{
		Event:      event,
		Language:   c.Dialogflow.Language,
		Parameters: params,
	}
	return nil
}

// Contexts returns the Dialogflow context set, nil on Actions SDK turns.
func (c *Conversation) Contexts() *contexts.Set {
	if c.Dialogflow == nil {
		return nil
	}
	return c.Dialogflow.Contexts
}
