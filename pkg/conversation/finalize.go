package conversation

import (
	"github.com/go-go-golems/fulfillment/pkg/responses"
)

// Result is the merged response of a finalized turn.
type Result struct {
	ExpectUserResponse bool
	// RichResponse is nil when nothing is rendered.
	RichResponse   *responses.RichResponse
	ExpectedIntent *responses.ExpectedIntent
	// Data is the serialized conversation data, empty when unchanged.
	Data string
	// UserStorage is the enveloped user storage, empty when unchanged.
	UserStorage        string
	NoInputPrompts     []responses.SimpleResponse
	SpeechBiasingHints []string
	// Followup replaces the response on Dialogflow turns.
	Followup *Followup
}

// Finalize merges the accumulated fragments into one response. It may only
// succeed once per conversation.
func (c *Conversation) Finalize() (*Result, error) {
	if c.Dialogflow != nil && c.Dialogflow.followup != nil {
		if c.digested {
			return nil, ErrDigested
		}
		c.digested = true
		return &Result{Followup: c.Dialogflow.followup}, nil
	}
	if !c.responded {
		return nil, ErrNoResponse
	}
	if c.digested {
		return nil, ErrDigested
	}
	c.digested = true

	rich, expected, err := c.merge()
	if err != nil {
		return nil, err
	}

	res := &Result{
		ExpectUserResponse: c.ExpectUserResponse,
		ExpectedIntent:     expected,
		NoInputPrompts:     c.NoInputPrompts,
		SpeechBiasingHints: c.SpeechBiasing,
	}
	if !rich.IsEmpty() {
		res.RichResponse = rich
	}

	if c.dataEncoder != nil {
		token, changed, err := c.dataEncoder.Encode(c.Data)
		if err != nil {
			return nil, err
		}
		if changed {
			res.Data = token
		}
	}
	if c.storageEncoder != nil {
		storage, changed, err := c.storageEncoder.Encode(c.User.Storage)
		if err != nil {
			return nil, err
		}
		if changed {
			res.UserStorage = storage
		}
	}

	c.logger.Debug().
		Int("fragments", len(c.Responses)).
		Bool("expect_user_response", res.ExpectUserResponse).
		Bool("data_changed", res.Data != "").
		Bool("storage_changed", res.UserStorage != "").
		Msg("conversation finalized")

	return res, nil
}

func (c *Conversation) merge() (*responses.RichResponse, *responses.ExpectedIntent, error) {
	rich := responses.NewRichResponse()
	var expected *responses.ExpectedIntent
	requireSimple := false

	for _, f := range c.Responses {
		switch f.Kind() {
		case responses.FragmentKindText:
			t, ok := f.(responses.Text)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich.AddText(string(t))
		case responses.FragmentKindSimple:
			sr, ok := f.(responses.SimpleResponse)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich.AddSimple(sr)
		case responses.FragmentKindHelper:
			h, ok := f.(responses.Helper)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			ei := h.ExpectedIntent()
			if expected != nil {
				c.logger.Warn().
					Str("replaced", expected.Intent).
					Str("intent", ei.Intent).
					Msg("more than one helper added, only the last one is sent")
			}
			expected = &ei
			if !h.Solo() {
				requireSimple = true
			}
		case responses.FragmentKindRichResponse:
			r, ok := f.(*responses.RichResponse)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich = r.Clone()
			if rich == nil {
				rich = responses.NewRichResponse()
			}
		case responses.FragmentKindSuggestions:
			sg, ok := f.(*responses.Suggestions)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich.AddSuggestions(sg)
			requireSimple = true
		case responses.FragmentKindLinkOut:
			lo, ok := f.(*responses.LinkOutSuggestion)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich.SetLinkOut(lo)
			requireSimple = true
		case responses.FragmentKindDisplay:
			d, ok := f.(responses.DisplayItem)
			if !ok {
				return nil, nil, newFragmentError(f)
			}
			rich.AddItem(d)
			if d.RequiresSimple() {
				requireSimple = true
			}
		default:
			return nil, nil, newFragmentError(f)
		}
	}

	if requireSimple && !rich.HasSimple() {
		return nil, nil, &ValidationError{Message: SimpleRequiredMessage}
	}
	return rich, expected, nil
}
