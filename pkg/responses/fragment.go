package responses

// FragmentKind classifies a value handed to Conversation.Add.
type FragmentKind int

const (
	FragmentKindText FragmentKind = iota
	FragmentKindSimple
	FragmentKindHelper
	FragmentKindRichResponse
	FragmentKindSuggestions
	FragmentKindLinkOut
	FragmentKindDisplay
)

// String returns a stable name used in logs and events.
func (k FragmentKind) String() string {
	switch k {
	case FragmentKindText:
		return "text"
	case FragmentKindSimple:
		return "simple"
	case FragmentKindHelper:
		return "helper"
	case FragmentKindRichResponse:
		return "rich_response"
	case FragmentKindSuggestions:
		return "suggestions"
	case FragmentKindLinkOut:
		return "link_out"
	case FragmentKindDisplay:
		return "display"
	}
	return "unknown"
}

// Fragment is one unit of output accumulated during a turn.
//
// The set of implementations is closed: only types in this package satisfy it.
type Fragment interface {
	Kind() FragmentKind
	fragment()
}

// Helper requests a secondary system capability (permission, sign-in, option
// selection, ...). Only one helper is effective per turn.
type Helper interface {
	Fragment
	ExpectedIntent() ExpectedIntent
	// Solo reports whether the helper may be sent without a simple response.
	Solo() bool
}

// DisplayItem is a single visual item that ends up as one RichResponseItem.
type DisplayItem interface {
	Fragment
	Item() RichResponseItem
	// RequiresSimple reports whether the item needs a speakable anchor in the same response.
	RequiresSimple() bool
}

// ExpectedIntent is the system intent a helper asks the platform to run next.
type ExpectedIntent struct {
	Intent         string         `json:"intent"`
	InputValueData map[string]any `json:"inputValueData,omitempty"`
	ParameterName  string         `json:"parameterName,omitempty"`
}

// Text is a plain string reply. It becomes a SimpleResponse on finalize.
type Text string

func (Text) Kind() FragmentKind { return FragmentKindText }
func (Text) fragment()          {}

// Texts converts plain strings to fragments.
func Texts(texts ...string) []Fragment {
	ret := make([]Fragment, 0, len(texts))
	for _, t := range texts {
		ret = append(ret, Text(t))
	}
	return ret
}
